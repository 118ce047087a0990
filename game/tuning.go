package game

// The flag is the Indian tricolour: three fixed horizontal bands. Part
// IDs double as the drag payload on the wire, so they stay stable.
const (
	PartOrange = "orange"
	PartWhite  = "white"
	PartGreen  = "green"

	ColorOrange = "#ff9933"
	ColorWhite  = "#ffffff"
	ColorGreen  = "#138808"

	PartCount = 3
)

// canonicalIDs maps band index (top to bottom) to the part that belongs
// there. This is the single source of truth for placement checks.
var canonicalIDs = [PartCount]string{PartOrange, PartWhite, PartGreen}

var partColors = map[string]string{
	PartOrange: ColorOrange,
	PartWhite:  ColorWhite,
	PartGreen:  ColorGreen,
}
