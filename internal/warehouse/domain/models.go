package domain

// ScrapedProduct is one row from the daily scrape batch in the warehouse.
// Prices are nullable because some retailers omit them.
type ScrapedProduct struct {
	DWID      string `gorm:"column:dwid;primaryKey"`
	ProductID string `gorm:"column:id;index:idx_scraped_products_id"`
	Year      int    `gorm:"column:year;index:idx_scraped_products_batch,priority:1"`
	Month     int    `gorm:"column:month;index:idx_scraped_products_batch,priority:2"`
	Day       int    `gorm:"column:day;index:idx_scraped_products_batch,priority:3"`

	Brand    string `gorm:"column:brand"`
	Title    string `gorm:"column:title"`
	Subtitle string `gorm:"column:subtitle"`
	URL      string `gorm:"column:url"`
	Image    string `gorm:"column:image"`

	PriceSale     *float64 `gorm:"column:price_sale"`
	PriceOriginal *float64 `gorm:"column:price_original"`
}

func (ScrapedProduct) TableName() string { return "scraped_products" }

// EffectivePrice is the price used for comparisons: sale when present,
// otherwise original.
func (p *ScrapedProduct) EffectivePrice() *float64 {
	if p == nil {
		return nil
	}
	if p.PriceSale != nil {
		return p.PriceSale
	}
	return p.PriceOriginal
}
