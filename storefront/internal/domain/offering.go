package domain

import "github.com/shopspring/decimal"

type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformOther     Platform = "other"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformYouTube, PlatformTikTok, PlatformOther:
		return true
	}
	return false
}

type Category string

const (
	CategoryFollowers    Category = "followers"
	CategoryLikes        Category = "likes"
	CategoryComments     Category = "comments"
	CategoryViews        Category = "views"
	CategoryAds          Category = "ads"
	CategoryVerification Category = "verification"
	CategoryOther        Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFollowers, CategoryLikes, CategoryComments, CategoryViews,
		CategoryAds, CategoryVerification, CategoryOther:
		return true
	}
	return false
}

// Offering is a purchasable catalog entry. One unit of an offering delivers
// UnitValue units of UnitLabel for Price.
type Offering struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Platform     Platform        `json:"platform"`
	Category     Category        `json:"category"`
	Price        decimal.Decimal `json:"price"`
	UnitValue    int64           `json:"unitValue"`
	UnitLabel    string          `json:"unitLabel"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	DeliveryTime string          `json:"deliveryTime"`
}
