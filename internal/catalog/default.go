package catalog

// DefaultVersion identifies the compiled-in catalog revision.
const DefaultVersion = "2025.1"

// Default returns the compiled-in sixteen-category warehouse catalog,
// validated and indexed. Other is a genuine category with its own rule set;
// it is not a manual-review alias.
func Default() (*Catalog, error) {
	c := &Catalog{
		Version:    DefaultVersion,
		Categories: defaultCategories(),
		Rules:      defaultRules(),
		Relevance:  defaultRelevance(),
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func defaultCategories() []Category {
	return []Category{
		{
			ID:          1,
			Code:        "inventory",
			Name:        "Inventory Management",
			Description: "stock levels on hand quantities lot tracking expiration inventory adjustments",
			Schema:      []string{"item_id", "location_id", "quantity", "lot_number", "expiration_date", "uom"},
			Keywords:    []string{"inventory", "stock", "on-hand", "adjustment", "lot", "quantity"},
			Patterns:    []string{"location_code", "item_code", "quantity_unit"},
			Defaults:    map[string]any{"uom": "ea"},
			Table:       "rec_inventory",
			Collection:  "vec_inventory",
		},
		{
			ID:          2,
			Code:        "locations",
			Name:        "Locations",
			Description: "storage locations zones aisles racks levels bins slotting capacity",
			Schema:      []string{"location_id", "zone", "aisle", "rack", "level", "bin", "capacity"},
			Keywords:    []string{"location", "zone", "aisle", "rack", "bin", "slot"},
			Patterns:    []string{"location_code"},
			Table:       "rec_locations",
			Collection:  "vec_locations",
		},
		{
			ID:          3,
			Code:        "items",
			Name:        "Items",
			Description: "item master sku descriptions dimensions weight unit cost product attributes",
			Schema:      []string{"item_id", "sku", "description", "weight", "dimensions", "unit_cost", "uom"},
			Keywords:    []string{"item", "sku", "product", "master", "catalog"},
			Patterns:    []string{"item_code"},
			Defaults:    map[string]any{"uom": "ea"},
			Table:       "rec_items",
			Collection:  "vec_items",
		},
		{
			ID:          4,
			Code:        "receiving",
			Name:        "Receiving",
			Description: "inbound receipts purchase orders vendor deliveries dock doors asn",
			Schema:      []string{"receipt_id", "po_number", "vendor_id", "item_id", "quantity_expected", "quantity_received", "dock_door"},
			Keywords:    []string{"receive", "receiving", "receipt", "inbound", "asn", "dock"},
			Patterns:    []string{"order_number", "item_code"},
			Table:       "rec_receiving",
			Collection:  "vec_receiving",
		},
		{
			ID:          5,
			Code:        "putaway",
			Name:        "Putaway",
			Description: "putaway moves from staging to storage directed putaway strategies",
			Schema:      []string{"putaway_id", "item_id", "from_location", "to_location", "quantity"},
			Keywords:    []string{"putaway", "put-away", "staging", "directed"},
			Patterns:    []string{"location_code", "item_code"},
			Table:       "rec_putaway",
			Collection:  "vec_putaway",
		},
		{
			ID:          6,
			Code:        "picking",
			Name:        "Picking",
			Description: "order picking waves batch picks pick paths shortages",
			Schema:      []string{"pick_id", "order_id", "item_id", "location_id", "quantity_picked", "wave_id"},
			Keywords:    []string{"pick", "picking", "wave", "batch", "shortage"},
			Patterns:    []string{"order_number", "location_code", "item_code"},
			Table:       "rec_picking",
			Collection:  "vec_picking",
		},
		{
			ID:          7,
			Code:        "packing",
			Name:        "Packing",
			Description: "packing stations cartons packing slips weight verification",
			Schema:      []string{"pack_id", "order_id", "carton_id", "weight", "station"},
			Keywords:    []string{"pack", "packing", "carton", "station"},
			Patterns:    []string{"order_number"},
			Table:       "rec_packing",
			Collection:  "vec_packing",
		},
		{
			ID:          8,
			Code:        "shipping",
			Name:        "Shipping",
			Description: "outbound shipments carriers tracking numbers ship dates manifests",
			Schema:      []string{"shipment_id", "order_id", "carrier", "tracking_number", "ship_date", "dock_door"},
			Keywords:    []string{"ship", "shipping", "shipment", "carrier", "tracking", "manifest"},
			Patterns:    []string{"order_number", "tracking_number"},
			Table:       "rec_shipping",
			Collection:  "vec_shipping",
		},
		{
			ID:          9,
			Code:        "returns",
			Name:        "Returns",
			Description: "customer returns rma reason codes dispositions restocking",
			Schema:      []string{"return_id", "order_id", "item_id", "quantity", "reason_code", "disposition"},
			Keywords:    []string{"return", "rma", "disposition", "refused"},
			Patterns:    []string{"order_number", "item_code"},
			Table:       "rec_returns",
			Collection:  "vec_returns",
		},
		{
			ID:          10,
			Code:        "cycle_counting",
			Name:        "Cycle Counting",
			Description: "cycle counts physical inventory variances count schedules accuracy",
			Schema:      []string{"count_id", "location_id", "item_id", "expected_quantity", "counted_quantity", "variance"},
			Keywords:    []string{"count", "cycle", "variance", "audit"},
			Patterns:    []string{"location_code", "item_code"},
			Table:       "rec_cycle_counting",
			Collection:  "vec_cycle_counting",
		},
		{
			ID:          11,
			Code:        "orders",
			Name:        "Orders",
			Description: "customer orders order lines priorities allocation order status",
			Schema:      []string{"order_id", "customer_id", "order_date", "priority", "status", "line_count"},
			Keywords:    []string{"order", "customer", "priority", "allocation"},
			Patterns:    []string{"order_number"},
			Table:       "rec_orders",
			Collection:  "vec_orders",
		},
		{
			ID:          12,
			Code:        "vendors",
			Name:        "Vendors",
			Description: "vendor master suppliers lead times contacts performance ratings",
			Schema:      []string{"vendor_id", "vendor_name", "contact", "lead_time_days", "rating"},
			Keywords:    []string{"vendor", "supplier", "lead-time"},
			Table:       "rec_vendors",
			Collection:  "vec_vendors",
		},
		{
			ID:          13,
			Code:        "equipment",
			Name:        "Equipment",
			Description: "forklifts conveyors scanners equipment status maintenance service",
			Schema:      []string{"equipment_id", "equipment_type", "status", "last_service_date", "operator_id"},
			Keywords:    []string{"equipment", "forklift", "conveyor", "scanner", "maintenance"},
			Table:       "rec_equipment",
			Collection:  "vec_equipment",
		},
		{
			ID:          14,
			Code:        "labor",
			Name:        "Labor",
			Description: "workforce shifts task assignments hours productivity standards",
			Schema:      []string{"employee_id", "shift", "task_type", "hours", "productivity"},
			Keywords:    []string{"labor", "shift", "employee", "productivity", "task"},
			Table:       "rec_labor",
			Collection:  "vec_labor",
		},
		{
			ID:          15,
			Code:        "safety",
			Name:        "Safety",
			Description: "safety incidents hazards severity inspections corrective actions",
			Schema:      []string{"incident_id", "incident_type", "severity", "location_id", "reported_by", "occurred_at"},
			Keywords:    []string{"safety", "incident", "hazard", "injury", "inspection"},
			Patterns:    []string{"location_code"},
			Table:       "rec_safety",
			Collection:  "vec_safety",
		},
		{
			ID:          16,
			Code:        "other",
			Name:        "Other",
			Description: "miscellaneous operational content not covered by another category",
			Keywords:    []string{"miscellaneous", "uncategorized"},
			Table:       "rec_other",
			Collection:  "vec_other",
		},
	}
}

func defaultRules() []ValidationRule {
	return []ValidationRule{
		{ID: "inv-item-required", CategoryID: 1, Type: RuleRequiredField, Field: "item_id", Priority: 1},
		{ID: "inv-qty-required", CategoryID: 1, Type: RuleRequiredField, Field: "quantity", Priority: 2},
		{ID: "inv-qty-non-negative", CategoryID: 1, Type: RuleBusinessConstraint, Field: "quantity", Definition: "non_negative", Priority: 3},
		{ID: "inv-qty-numeric", CategoryID: 1, Type: RuleDataType, Field: "quantity", Definition: "number", Priority: 4},
		{ID: "inv-location-format", CategoryID: 1, Type: RulePatternMatch, Field: "location_id", Definition: `^[A-Z]-\d{2}-[A-Z]-\d{2}$`, Priority: 5},

		{ID: "loc-id-required", CategoryID: 2, Type: RuleRequiredField, Field: "location_id", Priority: 1},
		{ID: "loc-id-format", CategoryID: 2, Type: RulePatternMatch, Field: "location_id", Definition: `^[A-Z]-\d{2}-[A-Z]-\d{2}$`, Priority: 2},
		{ID: "loc-capacity-non-negative", CategoryID: 2, Type: RuleBusinessConstraint, Field: "capacity", Definition: "non_negative", Priority: 3},

		{ID: "item-id-required", CategoryID: 3, Type: RuleRequiredField, Field: "item_id", Priority: 1},
		{ID: "item-cost-non-negative", CategoryID: 3, Type: RuleBusinessConstraint, Field: "unit_cost", Definition: "non_negative", Priority: 2},
		{ID: "item-weight-numeric", CategoryID: 3, Type: RuleDataType, Field: "weight", Definition: "number", Priority: 3},

		{ID: "rcv-po-required", CategoryID: 4, Type: RuleRequiredField, Field: "po_number", Priority: 1},
		{ID: "rcv-qty-non-negative", CategoryID: 4, Type: RuleBusinessConstraint, Field: "quantity_received", Definition: "non_negative", Priority: 2},

		{ID: "put-item-required", CategoryID: 5, Type: RuleRequiredField, Field: "item_id", Priority: 1},
		{ID: "put-to-required", CategoryID: 5, Type: RuleRequiredField, Field: "to_location", Priority: 2},
		{ID: "put-qty-non-negative", CategoryID: 5, Type: RuleBusinessConstraint, Field: "quantity", Definition: "non_negative", Priority: 3},

		{ID: "pick-order-required", CategoryID: 6, Type: RuleRequiredField, Field: "order_id", Priority: 1},
		{ID: "pick-qty-non-negative", CategoryID: 6, Type: RuleBusinessConstraint, Field: "quantity_picked", Definition: "non_negative", Priority: 2},

		{ID: "pack-order-required", CategoryID: 7, Type: RuleRequiredField, Field: "order_id", Priority: 1},
		{ID: "pack-weight-numeric", CategoryID: 7, Type: RuleDataType, Field: "weight", Definition: "number", Priority: 2},

		{ID: "ship-order-required", CategoryID: 8, Type: RuleRequiredField, Field: "order_id", Priority: 1},
		{ID: "ship-carrier-non-empty", CategoryID: 8, Type: RuleBusinessConstraint, Field: "carrier", Definition: "non_empty", Priority: 2},

		{ID: "ret-reason-required", CategoryID: 9, Type: RuleRequiredField, Field: "reason_code", Priority: 1},
		{ID: "ret-qty-non-negative", CategoryID: 9, Type: RuleBusinessConstraint, Field: "quantity", Definition: "non_negative", Priority: 2},

		{ID: "count-location-required", CategoryID: 10, Type: RuleRequiredField, Field: "location_id", Priority: 1},
		{ID: "count-counted-non-negative", CategoryID: 10, Type: RuleBusinessConstraint, Field: "counted_quantity", Definition: "non_negative", Priority: 2},

		{ID: "ord-id-required", CategoryID: 11, Type: RuleRequiredField, Field: "order_id", Priority: 1},
		{ID: "ord-lines-non-negative", CategoryID: 11, Type: RuleBusinessConstraint, Field: "line_count", Definition: "non_negative", Priority: 2},

		{ID: "ven-id-required", CategoryID: 12, Type: RuleRequiredField, Field: "vendor_id", Priority: 1},
		{ID: "ven-lead-non-negative", CategoryID: 12, Type: RuleBusinessConstraint, Field: "lead_time_days", Definition: "non_negative", Priority: 2},

		{ID: "eqp-id-required", CategoryID: 13, Type: RuleRequiredField, Field: "equipment_id", Priority: 1},

		{ID: "lab-employee-required", CategoryID: 14, Type: RuleRequiredField, Field: "employee_id", Priority: 1},
		{ID: "lab-hours-non-negative", CategoryID: 14, Type: RuleBusinessConstraint, Field: "hours", Definition: "non_negative", Priority: 2},

		{ID: "saf-type-required", CategoryID: 15, Type: RuleRequiredField, Field: "incident_type", Priority: 1},
		{ID: "saf-severity-non-empty", CategoryID: 15, Type: RuleBusinessConstraint, Field: "severity", Definition: "non_empty", Priority: 2},

		{ID: "other-content-present", CategoryID: 16, Type: RuleBusinessConstraint, Definition: "content_present", Priority: 1},
	}
}

func defaultRelevance() []RelevanceRule {
	return []RelevanceRule{
		{ID: "inventory-locations", Primary: "inventory", Linked: "locations", TriggerFields: []string{"location_id"}},
		{ID: "inventory-items", Primary: "inventory", Linked: "items", TriggerFields: []string{"item_id", "sku"}},
		{ID: "receiving-putaway", Primary: "receiving", Linked: "putaway", TriggerFields: []string{"dock_door", "to_location"}},
		{ID: "receiving-vendors", Primary: "receiving", Linked: "vendors", TriggerFields: []string{"vendor_id"}},
		{ID: "picking-orders", Primary: "picking", Linked: "orders", TriggerFields: []string{"order_id"}},
		{ID: "picking-locations", Primary: "picking", Linked: "locations", TriggerFields: []string{"location_id"}},
		{ID: "packing-shipping", Primary: "packing", Linked: "shipping", TriggerFields: []string{"carton_id", "tracking_number"}},
		{ID: "shipping-orders", Primary: "shipping", Linked: "orders", TriggerFields: []string{"order_id"}},
		{ID: "orders-picking", Primary: "orders", Linked: "picking", TriggerFields: []string{"wave_id", "pick_id"}},
		{ID: "orders-packing", Primary: "orders", Linked: "packing", TriggerFields: []string{"carton_id"}},
		{ID: "orders-shipping", Primary: "orders", Linked: "shipping", TriggerFields: []string{"tracking_number", "carrier"}},
		{ID: "orders-returns", Primary: "orders", Linked: "returns", TriggerFields: []string{"reason_code"}},
		{ID: "orders-inventory", Primary: "orders", Linked: "inventory", TriggerFields: []string{"quantity", "lot_number"}},
		{ID: "returns-items", Primary: "returns", Linked: "items", TriggerFields: []string{"item_id"}},
		{ID: "returns-inventory", Primary: "returns", Linked: "inventory", TriggerFields: []string{"quantity", "disposition"}},
		{ID: "counting-inventory", Primary: "cycle_counting", Linked: "inventory", TriggerFields: []string{"item_id", "counted_quantity"}},
		{ID: "counting-locations", Primary: "cycle_counting", Linked: "locations", TriggerFields: []string{"location_id"}},
		{ID: "safety-locations", Primary: "safety", Linked: "locations", TriggerFields: []string{"location_id"}},
		{ID: "safety-equipment", Primary: "safety", Linked: "equipment", TriggerFields: []string{"equipment_id"}},
		{ID: "labor-equipment", Primary: "labor", Linked: "equipment", TriggerFields: []string{"equipment_id", "operator_id"}},
		{ID: "any-items", Linked: "items", TriggerFields: []string{"sku"}},
	}
}
