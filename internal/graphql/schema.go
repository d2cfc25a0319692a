package graphql

import (
	"log/slog"
	"time"

	gql "github.com/graphql-go/graphql"

	"github.com/Tomlord1122/portfolio-backend/internal/domain"
	"github.com/Tomlord1122/portfolio-backend/internal/service"
)

var todoType = gql.NewObject(gql.ObjectConfig{
	Name: "Todo",
	Fields: gql.Fields{
		"id":          &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"title":       &gql.Field{Type: gql.NewNonNull(gql.String)},
		"description": &gql.Field{Type: gql.NewNonNull(gql.String)},
		"status":      &gql.Field{Type: gql.NewNonNull(gql.String)},
		"created_at":  &gql.Field{Type: gql.NewNonNull(gql.String)},
		"updated_at":  &gql.Field{Type: gql.NewNonNull(gql.String)},
		"user_id":     &gql.Field{Type: gql.NewNonNull(gql.String)},
		"user_name":   &gql.Field{Type: gql.String},
		"user_email":  &gql.Field{Type: gql.String},
	},
})

var userType = gql.NewObject(gql.ObjectConfig{
	Name: "User",
	Fields: gql.Fields{
		"id":    &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"name":  &gql.Field{Type: gql.NewNonNull(gql.String)},
		"email": &gql.Field{Type: gql.NewNonNull(gql.String)},
	},
})

var statsType = gql.NewObject(gql.ObjectConfig{
	Name: "Stats",
	Fields: gql.Fields{
		"totalTodos":     &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"pendingTodos":   &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"completedTodos": &gql.Field{Type: gql.NewNonNull(gql.Int)},
	},
})

var todosPageType = gql.NewObject(gql.ObjectConfig{
	Name: "TodosPage",
	Fields: gql.Fields{
		"data":       &gql.Field{Type: gql.NewNonNull(gql.NewList(gql.NewNonNull(todoType)))},
		"page":       &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"totalPages": &gql.Field{Type: gql.NewNonNull(gql.Int)},
	},
})

// NewSchema builds the todo schema. Every resolver goes through the same
// services as the REST and form endpoints.
func NewSchema(todos service.TodoService, users service.UserService, log *slog.Logger) (gql.Schema, error) {
	r := &resolver{todos: todos, users: users, log: log.With(slog.String("component", "graphql"))}

	idArg := gql.FieldConfigArgument{
		"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
	}

	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"todos": &gql.Field{
				Type: gql.NewNonNull(todosPageType),
				Args: gql.FieldConfigArgument{
					"query":  &gql.ArgumentConfig{Type: gql.String},
					"page":   &gql.ArgumentConfig{Type: gql.Int},
					"userId": &gql.ArgumentConfig{Type: gql.String},
				},
				Resolve: r.listTodos,
			},
			"todo": &gql.Field{
				Type:    todoType,
				Args:    idArg,
				Resolve: r.todo,
			},
			"stats": &gql.Field{
				Type:    gql.NewNonNull(statsType),
				Resolve: r.stats,
			},
			"users": &gql.Field{
				Type:    gql.NewNonNull(gql.NewList(gql.NewNonNull(userType))),
				Resolve: r.listUsers,
			},
		},
	})

	mutation := gql.NewObject(gql.ObjectConfig{
		Name: "Mutation",
		Fields: gql.Fields{
			"createTodo": &gql.Field{
				Type: gql.NewNonNull(todoType),
				Args: gql.FieldConfigArgument{
					"title":       &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
					"description": &gql.ArgumentConfig{Type: gql.String},
				},
				Resolve: r.createTodo,
			},
			"updateTodo": &gql.Field{
				Type: gql.NewNonNull(todoType),
				Args: gql.FieldConfigArgument{
					"id":          &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
					"title":       &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
					"description": &gql.ArgumentConfig{Type: gql.String},
					"status":      &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
				},
				Resolve: r.updateTodo,
			},
			"deleteTodo": &gql.Field{
				Type:    gql.NewNonNull(gql.ID),
				Args:    idArg,
				Resolve: r.deleteTodo,
			},
		},
	})

	return gql.NewSchema(gql.SchemaConfig{Query: query, Mutation: mutation})
}

func todoObject(t domain.Todo) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"created_at":  t.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  t.UpdatedAt.UTC().Format(time.RFC3339),
		"user_id":     t.UserID,
		"user_name":   nil,
		"user_email":  nil,
	}
}

func ownedTodoObject(t domain.TodoWithOwner) map[string]any {
	obj := todoObject(t.Todo)
	obj["user_name"] = t.UserName
	obj["user_email"] = t.UserEmail
	return obj
}
