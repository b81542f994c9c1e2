package dto

// MapRequest carries the query parameters of a map image request. Latitude
// is bounded slightly above the web-mercator limit, the projection clamps
// the remainder.
type MapRequest struct {
	Lat    float64 `form:"lat" validate:"gte=-85.06,lte=85.06"`
	Lon    float64 `form:"lon" validate:"gte=-180,lte=180"`
	Zoom   int     `form:"zoom" validate:"gte=0,lte=19"`
	Marker string  `form:"marker"`
	Anchor string  `form:"anchor"`
	Scale  int     `form:"scale" validate:"omitempty,gte=1,lte=4"`
}
