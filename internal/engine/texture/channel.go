package texture

// Channel identifies one of the five texture slots of a material.
type Channel int

// Material texture channels, in binding order.
const (
	BaseColor Channel = iota
	Metallic
	Roughness
	AmbientOcclusion
	Normal

	numChannels
)

// Channels lists every channel in binding order. Channel i binds to texture unit i.
var Channels = [numChannels]Channel{BaseColor, Metallic, Roughness, AmbientOcclusion, Normal}

func (c Channel) String() string {
	switch c {
	case BaseColor:
		return "base color"
	case Metallic:
		return "metallic"
	case Roughness:
		return "roughness"
	case AmbientOcclusion:
		return "ambient occlusion"
	case Normal:
		return "normal"
	default:
		return "unknown"
	}
}
