package service

import "wavenote-api/internal/models"

// PartitionTasks splits tasks by completion, keeping input order in both halves.
func PartitionTasks(tasks []models.Task) (uncompleted, completed []models.Task) {
	uncompleted = []models.Task{}
	completed = []models.Task{}
	for _, task := range tasks {
		if task.Completed {
			completed = append(completed, task)
		} else {
			uncompleted = append(uncompleted, task)
		}
	}
	return uncompleted, completed
}

func SplitTaskLists(tasks []models.Task) models.TaskLists {
	uncompleted, completed := PartitionTasks(tasks)
	return models.TaskLists{Uncompleted: uncompleted, Completed: completed}
}
