// Package repository is the generic sqlx store the domain repositories embed.
// Columns come from the entity's db tags. A field tagged table:"x" is read
// from a joined table, and column:"y" reads y into the db-tagged field.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/shared/constant"
	"roombook/shared/dto"
	"roombook/shared/logger"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ErrRequiredFilter guards statements that would touch every row.
var ErrRequiredFilter = errors.New("required filter")

const (
	argLimit  = "limit"
	argOffset = "offset"
)

type column struct {
	name  string
	table string
	alias string
}

func (c column) expr() string {
	if c.alias != "" {
		return fmt.Sprintf("%s.%s AS %s", c.table, c.name, c.alias)
	}

	return c.table + "." + c.name
}

// execer is satisfied by both *sqlx.DB and *sqlx.Tx.
type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	entity        string
	table         string
	primaryColumn string
	join          string
	columns       []column
	insertColumns []string
}

// joiner is implemented by entities read through a JOIN.
type joiner interface {
	GetJoinQuery() string
}

func NewRepository[T any](entity, table, primaryColumn string, db *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns, insertColumns := getColumns(table, reflect.TypeOf(zero))

	join := constant.Empty
	if j, ok := any(zero).(joiner); ok {
		join = j.GetJoinQuery()
	}

	return Repository[T]{
		db:            db,
		otel:          otl,
		entity:        entity,
		table:         table,
		primaryColumn: primaryColumn,
		join:          join,
		columns:       columns,
		insertColumns: insertColumns,
	}
}

func (repo *Repository[T]) trace(ctx context.Context, op string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, op))
}

func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	return repo.insert(ctx, repo.db.Write, model)
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	return repo.insert(ctx, sqltx, model)
}

func (repo *Repository[T]) insert(ctx context.Context, exec execer, model T) error {
	ctx, scope := repo.trace(ctx, "Insert")
	defer scope.End()

	query := repo.insertQuery()
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := exec.NamedExecContext(ctx, query, model); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.trace(ctx, "Exist")
	defer scope.End()

	where, args := whereClause(filter)
	if where == constant.Empty {
		return false, ErrRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var exist bool
	if err := namedGet(ctx, repo.db.Read, query, &exist, args); err != nil {
		return false, repo.fail(scope, "check exist data", err)
	}

	return exist, nil
}

// Get returns the zero T when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.trace(ctx, "Get")
	defer scope.End()

	where, args := whereClause(filter)
	query := repo.selectQuery(columns, where, constant.Empty)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var model T

	err := namedGet(ctx, repo.db.Read, query, &model, args)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	return repo.getAll(ctx, repo.db.Read, params, filter, columns)
}

// GetAllTx reads inside sqltx so the result observes the transaction's locks.
func (repo *Repository[T]) GetAllTx(ctx context.Context, sqltx *sqlx.Tx, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	return repo.getAll(ctx, sqltx, params, filter, columns)
}

func (repo *Repository[T]) getAll(ctx context.Context, exec execer, params dto.QueryParams, filter dto.FilterGroup, columns []string) ([]T, error) {
	ctx, scope := repo.trace(ctx, "GetAll")
	defer scope.End()

	where, args := whereClause(filter)
	query := repo.selectQuery(columns, where, pageClause(params, args))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	models := []T{}

	stmt, err := exec.PrepareNamedContext(ctx, query)
	if err != nil {
		return models, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if err = stmt.SelectContext(ctx, &models, args); err != nil {
		return models, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.trace(ctx, "Count")
	defer scope.End()

	where, args := whereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s %s", repo.table, repo.primaryColumn, repo.table, repo.join, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var count int
	if err := namedGet(ctx, repo.db.Read, query, &count, args); err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return count, nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.trace(ctx, "Delete")
	defer scope.End()

	query, args, err := repo.deleteQuery(filter, constant.Empty)
	if err != nil {
		return err
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err = repo.db.Write.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "delete data", err)
	}

	return nil
}

// DeleteReturning removes the rows matching filter and returns the value of
// returning for every deleted row. No match is an empty slice, not an error.
func (repo *Repository[T]) DeleteReturning(ctx context.Context, filter dto.FilterGroup, returning string) ([]string, error) {
	ctx, scope := repo.trace(ctx, "DeleteReturning")
	defer scope.End()

	query, args, err := repo.deleteQuery(filter, returning)
	if err != nil {
		return nil, err
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	return repo.returning(ctx, scope, "delete data", query, args)
}

func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	return repo.update(ctx, repo.db.Write, mod, filter)
}

func (repo *Repository[T]) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) error {
	return repo.update(ctx, sqltx, mod, filter)
}

func (repo *Repository[T]) update(ctx context.Context, exec execer, mod map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.trace(ctx, "Update")
	defer scope.End()

	query, args, err := repo.updateQuery(mod, filter, constant.Empty)
	if err != nil || query == constant.Empty {
		return err
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err = exec.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "update data", err)
	}

	return nil
}

// UpdateReturning applies mod to the rows matching filter and returns the
// value of returning for every updated row.
func (repo *Repository[T]) UpdateReturning(ctx context.Context, mod map[string]any, filter dto.FilterGroup, returning string) ([]string, error) {
	ctx, scope := repo.trace(ctx, "UpdateReturning")
	defer scope.End()

	query, args, err := repo.updateQuery(mod, filter, returning)
	if err != nil || query == constant.Empty {
		return nil, err
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	return repo.returning(ctx, scope, "update data", query, args)
}

func (repo *Repository[T]) returning(ctx context.Context, scope otel.Scope, action, query string, args map[string]any) ([]string, error) {
	values := []string{}

	stmt, err := repo.db.Write.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if err = stmt.SelectContext(ctx, &values, args); err != nil {
		return nil, repo.fail(scope, action, err)
	}

	return values, nil
}

func (repo *Repository[T]) insertQuery() string {
	placeholders := make([]string, len(repo.insertColumns))
	for i, col := range repo.insertColumns {
		placeholders[i] = ":" + col
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", repo.table, strings.Join(repo.insertColumns, ", "), strings.Join(placeholders, ", "))
}

// selectQuery lists every mapped column, or only those named in only.
func (repo *Repository[T]) selectQuery(only []string, where, tail string) string {
	exprs := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col.name) {
			continue
		}

		exprs = append(exprs, col.expr())
	}

	return strings.Join(strings.Fields(fmt.Sprintf("SELECT %s FROM %s %s %s %s", strings.Join(exprs, ", "), repo.table, repo.join, where, tail)), " ")
}

// updateQuery returns an empty query when mod is empty. Columns are sorted so
// equal updates render equal statements.
func (repo *Repository[T]) updateQuery(mod map[string]any, filter dto.FilterGroup, returning string) (string, map[string]any, error) {
	if len(mod) == 0 {
		return constant.Empty, nil, nil
	}

	where, args := whereClause(filter)
	if where == constant.Empty {
		return constant.Empty, nil, ErrRequiredFilter
	}

	sets := []string{}
	for _, col := range slices.Sorted(maps.Keys(mod)) {
		sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
	}

	maps.Copy(args, mod)

	query := fmt.Sprintf("UPDATE %s SET %s %s", repo.table, strings.Join(sets, ", "), where)
	if returning != constant.Empty {
		query += " RETURNING " + returning
	}

	return query, args, nil
}

func (repo *Repository[T]) deleteQuery(filter dto.FilterGroup, returning string) (string, map[string]any, error) {
	where, args := whereClause(filter)
	if where == constant.Empty {
		return constant.Empty, nil, ErrRequiredFilter
	}

	query := fmt.Sprintf("DELETE FROM %s %s", repo.table, where)
	if returning != constant.Empty {
		query += " RETURNING " + returning
	}

	return query, args, nil
}

func whereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == constant.Empty {
		return constant.Empty, map[string]any{}
	}

	return "WHERE " + where, args
}

// pageClause renders ORDER BY and LIMIT/OFFSET, binding the numbers into args.
// SortBy must already be restricted to known columns.
func pageClause(params dto.QueryParams, args map[string]any) string {
	parts := []string{}

	if params.SortBy != constant.Empty && params.SortDir != constant.Empty {
		parts = append(parts, fmt.Sprintf("ORDER BY %s %s", params.SortBy, params.SortDir))
	}

	if params.Limit > 0 {
		args[argLimit] = params.Limit
		parts = append(parts, "LIMIT :"+argLimit)

		if params.Page > 0 {
			args[argOffset] = params.Offset()
			parts = append(parts, "OFFSET :"+argOffset)
		}
	}

	return strings.Join(parts, " ")
}

func namedGet(ctx context.Context, exec execer, query string, dest any, args map[string]any) error {
	stmt, err := exec.PrepareNamedContext(ctx, query)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer stmt.Close()

	return stmt.GetContext(ctx, dest, args) //nolint:wrapcheck
}

// getColumns walks db tags, descending into embedded structs. Only columns of
// the base table are inserted.
func getColumns(table string, t reflect.Type) (columns []column, insertColumns []string) {
	for i := range t.NumField() {
		field := t.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			nested, nestedInsert := getColumns(table, field.Type)
			columns = append(columns, nested...)
			insertColumns = append(insertColumns, nestedInsert...)

			continue
		}

		name := field.Tag.Get("db")
		if name == constant.Empty || name == "-" {
			continue
		}

		col := column{name: name, table: field.Tag.Get("table")}
		if col.table == constant.Empty {
			col.table = table
			insertColumns = append(insertColumns, name)
		}

		if source := field.Tag.Get("column"); source != constant.Empty {
			col.name, col.alias = source, name
		}

		columns = append(columns, col)
	}

	return columns, insertColumns
}
