package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/study-notebook/constants"
)

var (
	tasksColumns = []*schema.Column{
		{Name: constants.ColID, Type: field.TypeUUID},
		{Name: constants.ColOwnerID, Type: field.TypeString},
		{Name: constants.ColTitle, Type: field.TypeString},
		{Name: constants.ColDescription, Type: field.TypeString, Size: 2147483647},
		{Name: constants.ColDueDate, Type: field.TypeTime},
		{Name: constants.ColIsReviewTask, Type: field.TypeBool, Default: false},
		{Name: constants.ColArchiveName, Type: field.TypeString, Nullable: true},
		{Name: constants.ColIsCompleted, Type: field.TypeBool, Default: false},
		{Name: constants.ColCreatedAt, Type: field.TypeTime},
	}
	// TasksTable holds the schema information for the "tasks" table.
	TasksTable = &schema.Table{
		Name:       constants.TasksTable,
		Columns:    tasksColumns,
		PrimaryKey: []*schema.Column{tasksColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "task_owner_id_due_date",
				Unique:  false,
				Columns: []*schema.Column{tasksColumns[1], tasksColumns[4]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{TasksTable}
)

// Migrate creates or upgrades the tables through ent's migrator.
func Migrate(ctx context.Context, db *DB) error {
	m, err := schema.NewMigrate(db.Driver)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
