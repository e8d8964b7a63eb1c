package models

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Column bounds, counted in characters.
const (
	MaxNameLength        = 128
	MaxDescriptionLength = 256
)

// Record is the shared shape of every named catalog entry. It is stored in
// the table of its Kind and is never updated after insert.
type Record struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:varchar(256);not null" json:"description"`
	CreatedDate time.Time `gorm:"column:created_date;not null;autoCreateTime" json:"-"`
}

// Component is a platform component such as a cloud provider or tool.
type Component struct {
	Record
}

// TableName pins the components table name.
func (Component) TableName() string { return "components" }

// Role is a job role such as ISSO.
type Role struct {
	Record
}

// TableName pins the roles table name.
func (Role) TableName() string { return "roles" }

// Kind describes one resource type served by the registrar: its names in
// URLs and messages, its table, and the gorm model used for migrations.
type Kind struct {
	Singular string // "component"
	Plural   string // "components", also the table name
	model    func() any
}

var (
	// Components is the component resource kind.
	Components = Kind{Singular: "component", Plural: "components", model: func() any { return &Component{} }}

	// Roles is the role resource kind.
	Roles = Kind{Singular: "role", Plural: "roles", model: func() any { return &Role{} }}
)

// Kinds returns every known resource kind in a stable order.
func Kinds() []Kind {
	return []Kind{Components, Roles}
}

// KindByName resolves a kind by its singular or plural name.
func KindByName(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if name == k.Singular || name == k.Plural {
			return k, true
		}
	}
	return Kind{}, false
}

// Table returns the table holding records of this kind.
func (k Kind) Table() string { return k.Plural }

// Model returns a fresh pointer to the concrete model, for AutoMigrate.
func (k Kind) Model() any { return k.model() }

// Title returns the capitalized singular name ("Component"). Casers are
// stateful, so one is built per call.
func (k Kind) Title() string { return cases.Title(language.English).String(k.Singular) }

// TitlePlural returns the capitalized plural name ("Components").
func (k Kind) TitlePlural() string { return cases.Title(language.English).String(k.Plural) }

// String implements fmt.Stringer.
func (k Kind) String() string { return k.Plural }
