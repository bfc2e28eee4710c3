package imagemeta

import "strconv"

// Orientation is the raw EXIF orientation tag (0x0112).
type Orientation int

const (
	OrientationUndefined Orientation = iota
	OrientationNormal
	OrientationFlipHorizontal
	OrientationRotate180
	OrientationFlipVertical
	OrientationTranspose
	OrientationRotate90
	OrientationTransverse
	OrientationRotate270
)

var orientationNames = map[Orientation]string{
	OrientationUndefined:      "undefined",
	OrientationNormal:         "normal",
	OrientationFlipHorizontal: "flip-horizontal",
	OrientationRotate180:      "rotate-180",
	OrientationFlipVertical:   "flip-vertical",
	OrientationTranspose:      "transpose",
	OrientationRotate90:       "rotate-90",
	OrientationTransverse:     "transverse",
	OrientationRotate270:      "rotate-270",
}

func (o Orientation) String() string {
	if name, ok := orientationNames[o]; ok {
		return name
	}
	return "orientation(" + strconv.Itoa(int(o)) + ")"
}

// RotationDegrees returns the clockwise rotation encoded by o. Mirrored
// variants report the rotation applied after a horizontal flip. Unknown
// values map to 0.
func (o Orientation) RotationDegrees() int {
	switch o {
	case OrientationRotate90, OrientationTransverse:
		return 90
	case OrientationRotate180, OrientationFlipVertical:
		return 180
	case OrientationRotate270, OrientationTranspose:
		return 270
	default:
		return 0
	}
}

func (o Orientation) Flipped() bool {
	switch o {
	case OrientationFlipHorizontal, OrientationFlipVertical, OrientationTranspose, OrientationTransverse:
		return true
	default:
		return false
	}
}
