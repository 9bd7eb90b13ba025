package tasksrepobridge

import (
	"github.com/jrazmi/todolist/core/repositories/tasksrepo"
	"github.com/jrazmi/todolist/core/scaffolding/ids"
)

func MarshalToBridge(task tasksrepo.Task) Task {
	return Task{
		ID:         ids.Encode(task.TaskID),
		Text:       task.Text,
		IsComplete: task.IsComplete,
	}
}

// MarshalListToBridge converts a list of core models to bridge models. The
// result is never nil so an empty page encodes as [].
func MarshalListToBridge(tasks []tasksrepo.Task) []Task {
	bridgeTasks := make([]Task, len(tasks))
	for i, task := range tasks {
		bridgeTasks[i] = MarshalToBridge(task)
	}
	return bridgeTasks
}

func MarshalCreateToRepository(input CreateTaskInput) tasksrepo.CreateTask {
	return tasksrepo.CreateTask{
		Text:       input.Text,
		IsComplete: input.IsComplete,
	}
}

func MarshalUpdateToRepository(input UpdateTaskInput) tasksrepo.UpdateTask {
	return tasksrepo.UpdateTask{
		Text:       input.Text,
		IsComplete: input.IsComplete,
	}
}
