// Package models contains the gorm persistence models. Each model maps one
// table and converts to and from its domain type with ToDomain / FromDomain.
package models

// All returns every model, in dependency order, for gorm AutoMigrate
func All() []any {
	return []any{
		&UserModel{},
		&CategoryModel{},
		&ProductModel{},
		&OrderModel{},
		&OrderItemModel{},
		&FeedbackModel{},
		&CartModel{},
	}
}
