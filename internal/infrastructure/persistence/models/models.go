package models

// All returns every persistence model for schema migration.
func All() []any {
	return []any{
		&StoreModel{},
		&ProductModel{},
		&VariationModel{},
		&TaxModel{},
		&ShipmentPolicyModel{},
		&CouponModel{},
		&SubscriptionModel{},
		&AuditLogModel{},
		&InvoiceTaskModel{},
	}
}
