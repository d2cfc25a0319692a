package graphql

import (
	"log/slog"

	gql "github.com/graphql-go/graphql"

	"github.com/Tomlord1122/portfolio-backend/internal/service"
)

type resolver struct {
	todos service.TodoService
	users service.UserService
	log   *slog.Logger
}

func (r *resolver) listTodos(p gql.ResolveParams) (any, error) {
	query, _ := p.Args["query"].(string)
	userID, _ := p.Args["userId"].(string)
	page, _ := p.Args["page"].(int)
	if page < 1 {
		page = 1
	}

	result, err := r.todos.ListTodos(p.Context, service.CallerFrom(p.Context), service.ListParams{
		Query:  query,
		Page:   page,
		UserID: userID,
	})
	if err != nil {
		return nil, r.toError(p, err)
	}

	rows := make([]any, 0, len(result.Data))
	for _, t := range result.Data {
		rows = append(rows, ownedTodoObject(t))
	}
	return map[string]any{
		"data":       rows,
		"page":       result.Page,
		"totalPages": result.TotalPages,
	}, nil
}

func (r *resolver) todo(p gql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	todo, err := r.todos.GetTodo(p.Context, service.CallerFrom(p.Context), id)
	if err != nil {
		return nil, r.toError(p, err)
	}
	return todoObject(*todo), nil
}

func (r *resolver) stats(p gql.ResolveParams) (any, error) {
	stats, err := r.todos.Stats(p.Context, service.CallerFrom(p.Context))
	if err != nil {
		return nil, r.toError(p, err)
	}
	return map[string]any{
		"totalTodos":     int(stats.TotalTodos),
		"pendingTodos":   int(stats.PendingTodos),
		"completedTodos": int(stats.CompletedTodos),
	}, nil
}

func (r *resolver) listUsers(p gql.ResolveParams) (any, error) {
	users, err := r.users.ListUsers(p.Context, service.CallerFrom(p.Context))
	if err != nil {
		return nil, r.toError(p, err)
	}
	out := make([]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{"id": u.ID, "name": u.Name, "email": u.Email})
	}
	return out, nil
}

func (r *resolver) createTodo(p gql.ResolveParams) (any, error) {
	title, _ := p.Args["title"].(string)
	description, _ := p.Args["description"].(string)

	todo, err := r.todos.CreateTodo(p.Context, service.CallerFrom(p.Context), service.Input(service.TodoInput{
		Title:       title,
		Description: description,
	}))
	if err != nil {
		return nil, r.toError(p, err)
	}
	return todoObject(*todo), nil
}

func (r *resolver) updateTodo(p gql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	title, _ := p.Args["title"].(string)
	description, _ := p.Args["description"].(string)
	status, _ := p.Args["status"].(string)

	todo, err := r.todos.UpdateTodo(p.Context, service.CallerFrom(p.Context), id, service.Input(service.TodoInput{
		Title:       title,
		Description: description,
		Status:      status,
	}))
	if err != nil {
		return nil, r.toError(p, err)
	}
	return todoObject(*todo), nil
}

func (r *resolver) deleteTodo(p gql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	if err := r.todos.DeleteTodo(p.Context, service.CallerFrom(p.Context), id); err != nil {
		return nil, r.toError(p, err)
	}
	return id, nil
}
