package domain

// ProgressRatio is the truncated percentage of completed tasks, 0 for an empty task set.
func ProgressRatio(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}
	return completed * 100 / total
}

func CalculateProgress(tasks []Task) int {
	completed := 0
	for _, t := range tasks {
		if t.Status == TaskStatusCompleted {
			completed++
		}
	}
	return ProgressRatio(completed, len(tasks))
}
