package domain

// StatusCount is one bucket of the tasks-by-status grouping.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// AssigneeCount ranks a user by the number of tasks assigned to them.
type AssigneeCount struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	TaskCount int    `json:"task_count"`
}

// DashboardStats is the admin reporting payload.
type DashboardStats struct {
	TotalTasks    int             `json:"totalTasks"`
	TasksByStatus []StatusCount   `json:"tasksByStatus"`
	TasksDueToday int             `json:"tasksDueToday"`
	TopUsers      []AssigneeCount `json:"topUsers"`
}
