package tasksrepobridge

// Task is the wire form of a task. ID is the encoded task id.
type Task struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsComplete bool   `json:"isComplete"`
}

// CreateTaskInput is the body of POST /tasks.
type CreateTaskInput struct {
	Text       string `json:"text"`
	IsComplete bool   `json:"isComplete"`
}

// UpdateTaskInput is the body of PATCH /tasks/{task_id}. Absent fields are
// left unchanged.
type UpdateTaskInput struct {
	Text       *string `json:"text"`
	IsComplete *bool   `json:"isComplete"`
}
