// Package schema defines the desired-state document model for the
// configurator: the typed sections of the configuration file, their
// natural keys, validation rules, and scoping.
package schema

// Config is the root of a desired-state document. The same shape is used
// for the local document and for the remote snapshot, so the diff engine
// can compare the two directly.
type Config struct {
	// Shop holds the singleton shop settings section.
	Shop *ShopSettings `yaml:"shop,omitempty" json:"shop,omitempty"`

	Channels      []Channel      `yaml:"channels,omitempty" json:"channels,omitempty" validate:"dive"`
	Attributes    []Attribute    `yaml:"attributes,omitempty" json:"attributes,omitempty" validate:"dive"`
	TaxClasses    []TaxClass     `yaml:"taxClasses,omitempty" json:"taxClasses,omitempty" validate:"dive"`
	Warehouses    []Warehouse    `yaml:"warehouses,omitempty" json:"warehouses,omitempty" validate:"dive"`
	ShippingZones []ShippingZone `yaml:"shippingZones,omitempty" json:"shippingZones,omitempty" validate:"dive"`
	ProductTypes  []ProductType  `yaml:"productTypes,omitempty" json:"productTypes,omitempty" validate:"dive"`
	PageTypes     []PageType     `yaml:"pageTypes,omitempty" json:"pageTypes,omitempty" validate:"dive"`
	Categories    []Category     `yaml:"categories,omitempty" json:"categories,omitempty" validate:"dive"`
	Collections   []Collection   `yaml:"collections,omitempty" json:"collections,omitempty" validate:"dive"`
	Products      []Product      `yaml:"products,omitempty" json:"products,omitempty" validate:"dive"`
	Pages         []Page         `yaml:"pages,omitempty" json:"pages,omitempty" validate:"dive"`
	Menus         []Menu         `yaml:"menus,omitempty" json:"menus,omitempty" validate:"dive"`
}

// Entity is implemented by every record that lives in a collection
// section. The natural key is the human-assigned slug (or name for types
// without a slug); the remote ID is only ever populated on entities that
// came back from the platform.
type Entity interface {
	NaturalKey() string
	RemoteID() string
}

// ShopSettings is the singleton shop section. All fields are optional;
// an unset field means "keep the platform default".
type ShopSettings struct {
	HeaderText                  string `yaml:"headerText,omitempty" json:"headerText,omitempty"`
	Description                 string `yaml:"description,omitempty" json:"description,omitempty"`
	DefaultMailSenderName       string `yaml:"defaultMailSenderName,omitempty" json:"defaultMailSenderName,omitempty"`
	DefaultMailSenderAddress    string `yaml:"defaultMailSenderAddress,omitempty" json:"defaultMailSenderAddress,omitempty" validate:"omitempty,email"`
	CustomerSetPasswordURL      string `yaml:"customerSetPasswordUrl,omitempty" json:"customerSetPasswordUrl,omitempty" validate:"omitempty,url"`
	DefaultWeightUnit           string `yaml:"defaultWeightUnit,omitempty" json:"defaultWeightUnit,omitempty" validate:"omitempty,oneof=KG LB OZ G TONNE"`
	TrackInventoryByDefault     *bool  `yaml:"trackInventoryByDefault,omitempty" json:"trackInventoryByDefault,omitempty"`
	AutomaticFulfillmentDigital *bool  `yaml:"automaticFulfillmentDigitalProducts,omitempty" json:"automaticFulfillmentDigitalProducts,omitempty"`
	FulfillmentAutoApprove      *bool  `yaml:"fulfillmentAutoApprove,omitempty" json:"fulfillmentAutoApprove,omitempty"`
	FulfillmentAllowUnpaid      *bool  `yaml:"fulfillmentAllowUnpaid,omitempty" json:"fulfillmentAllowUnpaid,omitempty"`
	LimitQuantityPerCheckout    *int   `yaml:"limitQuantityPerCheckout,omitempty" json:"limitQuantityPerCheckout,omitempty" validate:"omitempty,min=1"`
}

// Channel is a sales channel. Keyed by slug.
type Channel struct {
	ID             string   `yaml:"-" json:"id,omitempty"`
	Name           string   `yaml:"name" json:"name" validate:"required"`
	Slug           string   `yaml:"slug" json:"slug" validate:"required,slug"`
	CurrencyCode   string   `yaml:"currencyCode" json:"currencyCode" validate:"required,len=3"`
	DefaultCountry string   `yaml:"defaultCountry" json:"defaultCountry" validate:"required,len=2"`
	IsActive       *bool    `yaml:"isActive,omitempty" json:"isActive,omitempty"`
	Warehouses     []string `yaml:"warehouses,omitempty" json:"warehouses,omitempty"`
}

func (c Channel) NaturalKey() string { return c.Slug }
func (c Channel) RemoteID() string   { return c.ID }

// Attribute is a product or page attribute. Keyed by name; attributes
// have no slug in the document format.
type Attribute struct {
	ID        string           `yaml:"-" json:"id,omitempty"`
	Name      string           `yaml:"name" json:"name" validate:"required"`
	InputType string           `yaml:"inputType" json:"inputType" validate:"required,oneof=DROPDOWN MULTISELECT PLAIN_TEXT RICH_TEXT BOOLEAN DATE NUMERIC REFERENCE SWATCH"`
	Values    []AttributeValue `yaml:"values,omitempty" json:"values,omitempty" validate:"dive"`
}

// AttributeValue is one choice of a dropdown/multiselect attribute.
type AttributeValue struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

func (a Attribute) NaturalKey() string { return a.Name }
func (a Attribute) RemoteID() string   { return a.ID }

// TaxClass groups per-country tax rates. Keyed by name. CountryRates is
// order-insensitive; rates are matched by country code.
type TaxClass struct {
	ID           string        `yaml:"-" json:"id,omitempty"`
	Name         string        `yaml:"name" json:"name" validate:"required"`
	CountryRates []CountryRate `yaml:"countryRates,omitempty" json:"countryRates,omitempty" validate:"dive"`
}

// CountryRate is a tax rate for one country.
type CountryRate struct {
	CountryCode string  `yaml:"countryCode" json:"countryCode" validate:"required,len=2"`
	Rate        float64 `yaml:"rate" json:"rate" validate:"min=0,max=100"`
}

func (t TaxClass) NaturalKey() string { return t.Name }
func (t TaxClass) RemoteID() string   { return t.ID }

// Warehouse is a stock location. Keyed by slug.
type Warehouse struct {
	ID                    string  `yaml:"-" json:"id,omitempty"`
	Name                  string  `yaml:"name" json:"name" validate:"required"`
	Slug                  string  `yaml:"slug" json:"slug" validate:"required,slug"`
	Email                 string  `yaml:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	ClickAndCollectOption string  `yaml:"clickAndCollectOption,omitempty" json:"clickAndCollectOption,omitempty" validate:"omitempty,oneof=DISABLED LOCAL ALL"`
	Address               Address `yaml:"address" json:"address"`
}

// Address is a postal address attached to a warehouse.
type Address struct {
	StreetAddress string `yaml:"streetAddress,omitempty" json:"streetAddress,omitempty"`
	City          string `yaml:"city,omitempty" json:"city,omitempty"`
	PostalCode    string `yaml:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country       string `yaml:"country" json:"country" validate:"required,len=2"`
}

func (w Warehouse) NaturalKey() string { return w.Slug }
func (w Warehouse) RemoteID() string   { return w.ID }

// ShippingZone groups countries served by a set of warehouses. Keyed by
// name. Countries and Warehouses are order-insensitive membership lists.
type ShippingZone struct {
	ID          string   `yaml:"-" json:"id,omitempty"`
	Name        string   `yaml:"name" json:"name" validate:"required"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Default     *bool    `yaml:"default,omitempty" json:"default,omitempty"`
	Countries   []string `yaml:"countries,omitempty" json:"countries,omitempty" validate:"dive,len=2"`
	Warehouses  []string `yaml:"warehouses,omitempty" json:"warehouses,omitempty"`
}

func (z ShippingZone) NaturalKey() string { return z.Name }
func (z ShippingZone) RemoteID() string   { return z.ID }

// ProductType declares the attribute sets available to products of that
// type. Keyed by name. Attribute references are by attribute name.
type ProductType struct {
	ID                 string   `yaml:"-" json:"id,omitempty"`
	Name               string   `yaml:"name" json:"name" validate:"required"`
	IsShippingRequired *bool    `yaml:"isShippingRequired,omitempty" json:"isShippingRequired,omitempty"`
	ProductAttributes  []string `yaml:"productAttributes,omitempty" json:"productAttributes,omitempty"`
	VariantAttributes  []string `yaml:"variantAttributes,omitempty" json:"variantAttributes,omitempty"`
}

func (p ProductType) NaturalKey() string { return p.Name }
func (p ProductType) RemoteID() string   { return p.ID }

// PageType declares the attribute set available to pages. Keyed by name.
type PageType struct {
	ID         string   `yaml:"-" json:"id,omitempty"`
	Name       string   `yaml:"name" json:"name" validate:"required"`
	Attributes []string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

func (p PageType) NaturalKey() string { return p.Name }
func (p PageType) RemoteID() string   { return p.ID }

// Category is a product category. Keyed by slug. Parent references the
// parent category by slug and may be empty for top-level categories.
type Category struct {
	ID          string `yaml:"-" json:"id,omitempty"`
	Name        string `yaml:"name" json:"name" validate:"required"`
	Slug        string `yaml:"slug" json:"slug" validate:"required,slug"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Parent      string `yaml:"parent,omitempty" json:"parent,omitempty"`
}

func (c Category) NaturalKey() string { return c.Slug }
func (c Category) RemoteID() string   { return c.ID }

// Collection is a curated product grouping. Keyed by slug. Products is an
// order-insensitive membership list of product slugs.
type Collection struct {
	ID          string   `yaml:"-" json:"id,omitempty"`
	Name        string   `yaml:"name" json:"name" validate:"required"`
	Slug        string   `yaml:"slug" json:"slug" validate:"required,slug"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	IsPublished *bool    `yaml:"isPublished,omitempty" json:"isPublished,omitempty"`
	Products    []string `yaml:"products,omitempty" json:"products,omitempty"`
}

func (c Collection) NaturalKey() string { return c.Slug }
func (c Collection) RemoteID() string   { return c.ID }

// Product is a sellable product. Keyed by slug. ProductType and Category
// reference other sections by their natural keys.
type Product struct {
	ID          string    `yaml:"-" json:"id,omitempty"`
	Name        string    `yaml:"name" json:"name" validate:"required"`
	Slug        string    `yaml:"slug" json:"slug" validate:"required,slug"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	ProductType string    `yaml:"productType" json:"productType" validate:"required"`
	Category    string    `yaml:"category,omitempty" json:"category,omitempty"`
	Variants    []Variant `yaml:"variants,omitempty" json:"variants,omitempty" validate:"dive"`
}

// Variant is a product variant, matched within a product by SKU.
type Variant struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	SKU  string `yaml:"sku" json:"sku" validate:"required"`
}

func (p Product) NaturalKey() string { return p.Slug }
func (p Product) RemoteID() string   { return p.ID }

// Page is a static content page. Keyed by slug.
type Page struct {
	ID       string `yaml:"-" json:"id,omitempty"`
	Title    string `yaml:"title" json:"title" validate:"required"`
	Slug     string `yaml:"slug" json:"slug" validate:"required,slug"`
	PageType string `yaml:"pageType,omitempty" json:"pageType,omitempty"`
	Content  string `yaml:"content,omitempty" json:"content,omitempty"`
}

func (p Page) NaturalKey() string { return p.Slug }
func (p Page) RemoteID() string   { return p.ID }

// Menu is a navigation menu. Keyed by slug. Items are matched by item
// name when compared against the remote state.
type Menu struct {
	ID    string     `yaml:"-" json:"id,omitempty"`
	Name  string     `yaml:"name" json:"name" validate:"required"`
	Slug  string     `yaml:"slug" json:"slug" validate:"required,slug"`
	Items []MenuItem `yaml:"items,omitempty" json:"items,omitempty" validate:"dive"`
}

// MenuItem is one entry of a navigation menu. Exactly one of the target
// fields is normally set.
type MenuItem struct {
	Name       string `yaml:"name" json:"name" validate:"required"`
	URL        string `yaml:"url,omitempty" json:"url,omitempty" validate:"omitempty,url"`
	Category   string `yaml:"category,omitempty" json:"category,omitempty"`
	Collection string `yaml:"collection,omitempty" json:"collection,omitempty"`
	Page       string `yaml:"page,omitempty" json:"page,omitempty"`
}

func (m Menu) NaturalKey() string { return m.Slug }
func (m Menu) RemoteID() string   { return m.ID }
