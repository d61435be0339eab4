package catalog

// Category is one top-level browsing category.
type Category struct {
	ID       string `dynamodbav:"category_id"` // PK
	Name     string `dynamodbav:"name"`
	ImageURL string `dynamodbav:"image,omitempty"`
	Slug     string `dynamodbav:"slug,omitempty"`
}

// Product is the read-only product summary served to the listing views.
// name_lc is maintained by the ingestion pipeline for case-insensitive search.
type Product struct {
	ID              string   `dynamodbav:"product_id"` // PK
	Name            string   `dynamodbav:"name"`
	NameLC          string   `dynamodbav:"name_lc,omitempty"`
	UnitPrice       float64  `dynamodbav:"unit_price"`
	ImageURL        string   `dynamodbav:"image,omitempty"`
	Weight          float64  `dynamodbav:"weight,omitempty"`
	WeightUnit      string   `dynamodbav:"weight_unit,omitempty"`
	WeightText      string   `dynamodbav:"weight_text,omitempty"`
	OriginCountryID string   `dynamodbav:"origin_country_id,omitempty"`
	Labels          []string `dynamodbav:"labels,omitempty"`
	CategoryIDs     []string `dynamodbav:"category_ids,omitempty"`
	Slug            string   `dynamodbav:"slug,omitempty"`
}

// OriginCountry decorates product tiles with a display name.
type OriginCountry struct {
	ID   string `dynamodbav:"country_id"` // PK
	Name string `dynamodbav:"name"`
}
