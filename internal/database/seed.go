package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/identity"
)

const seedPassword = "123456"

var seedUsers = []domain.User{
	{ID: "410544b2-4001-4271-9855-fec4b6a6442a", Name: "Admin", Email: "admin@fedotov.dev", Role: domain.RoleAdmin},
	{ID: "510544b2-4001-4271-9855-fec4b6a6442b", Name: "Demo User", Email: "user@fedotov.dev", Role: domain.RoleUser},
}

var seedTodos = []domain.Todo{
	{Title: "Set up CI/CD pipeline", Description: "Configure GitHub Actions for automated testing and deployment", Status: domain.StatusCompleted, UserID: seedUsers[0].ID},
	{Title: "Write unit tests for utils", Description: "Cover formatting and pagination helpers with table tests", Status: domain.StatusPending, UserID: seedUsers[0].ID},
	{Title: "Deploy to AWS", Description: "Set up ECS Fargate deployment with RDS PostgreSQL", Status: domain.StatusPending, UserID: seedUsers[1].ID},
	{Title: "Add Docker support", Description: "Create multi-stage Dockerfile and docker-compose for local development", Status: domain.StatusCompleted, UserID: seedUsers[0].ID},
	{Title: "Implement dark mode", Description: "Add dark theme support to the dashboard", Status: domain.StatusPending, UserID: seedUsers[1].ID},
	{Title: "Set up monitoring", Description: "Scrape the /metrics endpoint and alert on error rates", Status: domain.StatusPending, UserID: seedUsers[0].ID},
	{Title: "Configure Kubernetes", Description: "Write K8s manifests: Deployment, Service, Ingress, HPA", Status: domain.StatusPending, UserID: seedUsers[1].ID},
	{Title: "Build REST API", Description: "Create versioned REST endpoints for todos with proper HTTP status codes", Status: domain.StatusCompleted, UserID: seedUsers[1].ID},
	{Title: "Add GraphQL layer", Description: "Expose todos and users through a GraphQL schema", Status: domain.StatusPending, UserID: seedUsers[0].ID},
	{Title: "Improve accessibility", Description: "Audit and fix ARIA attributes, keyboard navigation, color contrast", Status: domain.StatusPending, UserID: seedUsers[1].ID},
}

// Seed inserts the demo accounts and, when the todos table is empty, the sample todos.
func Seed(ctx context.Context, db *gorm.DB) error {
	const op = "database.Seed"

	hash, err := identity.HashPassword(seedPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	users := make([]domain.User, len(seedUsers))
	copy(users, seedUsers)
	for i := range users {
		users[i].Password = hash
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&users).Error; err != nil {
			return fmt.Errorf("%s: users: %w", op, err)
		}

		var existing int64
		if err := tx.Model(&domain.Todo{}).Count(&existing).Error; err != nil {
			return fmt.Errorf("%s: count todos: %w", op, err)
		}
		if existing > 0 {
			return nil
		}

		todos := make([]domain.Todo, len(seedTodos))
		copy(todos, seedTodos)
		if err := tx.Create(&todos).Error; err != nil {
			return fmt.Errorf("%s: todos: %w", op, err)
		}
		return nil
	})
}
