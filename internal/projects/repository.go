package projects

import "context"

// Repository is the project data source.
type Repository interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
}
