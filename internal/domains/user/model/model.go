package model

import (
	"roombook/shared/constant"
	"roombook/shared/model"
	"time"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldLastLogin = "last_login"

	ConstraintUniqueUsername = "users_username_key"
)

type User struct {
	ID        string     `db:"id"`
	Username  string     `db:"username"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Role      string     `db:"role"`
	LastLogin *time.Time `db:"last_login"`
	model.Metadata
}

// PublicColumns excludes the password hash.
var PublicColumns = []string{
	FieldID,
	FieldUsername,
	FieldEmail,
	FieldRole,
	FieldLastLogin,
	constant.FieldCreatedAt,
	constant.FieldModifiedAt,
	constant.FieldCreatedBy,
	constant.FieldModifiedBy,
}
