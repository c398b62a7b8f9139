package landmark

// Canonical landmark fixtures. They place only the points the detectors read; every
// other point sits at the frame center.

// Eye geometry used by the face fixture: corners are eyeWidth apart, so an eye with
// lid gap h has EAR h/eyeWidth.
const (
	eyeWidth   = 0.06
	eyeCenterY = 0.40
	mouthY     = 0.65
	browY      = 0.33
)

var (
	fixtureLeftEye   = [6]int{33, 160, 158, 133, 153, 144}
	fixtureRightEye  = [6]int{263, 387, 385, 362, 380, 373}
	fixtureLeftBrow  = [5]int{70, 63, 105, 66, 107}
	fixtureRightBrow = [5]int{336, 296, 334, 293, 300}
)

// FaceBuilder assembles a synthetic face mesh with controllable features.
type FaceBuilder struct {
	leftEAR, rightEAR     float64
	mouthOpen, smile      float64
	leftBrow, rightBrow   float64
	noseDX, noseDY        float64
	shiftX, shiftY, scale float64
	iris                  bool
}

// NewFace returns a builder for a frontal, level face with open eyes (EAR 0.3).
func NewFace() *FaceBuilder {
	return &FaceBuilder{
		leftEAR:  0.3,
		rightEAR: 0.3,
		scale:    1,
		iris:     true,
	}
}

// Eyes sets the eye aspect ratio of each eye.
func (b *FaceBuilder) Eyes(left, right float64) *FaceBuilder {
	b.leftEAR, b.rightEAR = left, right
	return b
}

// Mouth sets the vertical lip gap. The mouth is 0.1 wide.
func (b *FaceBuilder) Mouth(gap float64) *FaceBuilder {
	b.mouthOpen = gap
	return b
}

// Smile raises both mouth corners by lift.
func (b *FaceBuilder) Smile(lift float64) *FaceBuilder {
	b.smile = lift
	return b
}

// Brows raises each eyebrow by the given amount (screen-up).
func (b *FaceBuilder) Brows(left, right float64) *FaceBuilder {
	b.leftBrow, b.rightBrow = left, right
	return b
}

// Nose offsets the nose tip only, which changes yaw and pitch.
func (b *FaceBuilder) Nose(dx, dy float64) *FaceBuilder {
	b.noseDX, b.noseDY = dx, dy
	return b
}

// Shift translates the whole face.
func (b *FaceBuilder) Shift(dx, dy float64) *FaceBuilder {
	b.shiftX, b.shiftY = dx, dy
	return b
}

// Scale multiplies every coordinate by f.
func (b *FaceBuilder) Scale(f float64) *FaceBuilder {
	b.scale = f
	return b
}

// WithoutIris drops the refined iris points, leaving the 468-point mesh.
func (b *FaceBuilder) WithoutIris() *FaceBuilder {
	b.iris = false
	return b
}

// Build produces the landmark set.
func (b *FaceBuilder) Build() Set {
	n := FaceMeshPoints
	if b.iris {
		n = FaceMeshIrisPoints
	}
	s := make(Set, n)
	for i := range s {
		s[i] = Point3D{X: 0.5, Y: 0.5}
	}

	placeEye(s, fixtureLeftEye, 0.40, -1, b.leftEAR)
	placeEye(s, fixtureRightEye, 0.60, 1, b.rightEAR)

	s[NoseTip] = Point3D{X: 0.5 + b.noseDX, Y: 0.5 + b.noseDY, Z: -0.05}
	s[Forehead] = Point3D{X: 0.5, Y: 0.2}
	s[Chin] = Point3D{X: 0.5, Y: 0.8}

	s[MouthLeft] = Point3D{X: 0.45, Y: mouthY - b.smile}
	s[MouthRight] = Point3D{X: 0.55, Y: mouthY - b.smile}
	s[UpperLip] = Point3D{X: 0.5, Y: mouthY - b.mouthOpen/2}
	s[LowerLip] = Point3D{X: 0.5, Y: mouthY + b.mouthOpen/2}

	for i, idx := range fixtureLeftBrow {
		s[idx] = Point3D{X: 0.35 + float64(i)*0.025, Y: browY - b.leftBrow}
	}
	for i, idx := range fixtureRightBrow {
		s[idx] = Point3D{X: 0.55 + float64(i)*0.025, Y: browY - b.rightBrow}
	}

	s[LeftCheek] = Point3D{X: 0.38, Y: 0.55}
	s[RightCheek] = Point3D{X: 0.62, Y: 0.55}
	if b.iris {
		s[LeftIris] = Point3D{X: 0.40, Y: eyeCenterY}
		s[RightIris] = Point3D{X: 0.60, Y: eyeCenterY}
	}

	for i := range s {
		s[i].X = (s[i].X + b.shiftX) * b.scale
		s[i].Y = (s[i].Y + b.shiftY) * b.scale
		s[i].Z *= b.scale
	}
	return s
}

// placeEye lays out the six EAR points. side is -1 when the outer corner has the
// smaller x, +1 otherwise.
func placeEye(s Set, idx [6]int, cx float64, side float64, ear float64) {
	half := eyeWidth / 2
	gap := ear * eyeWidth / 2
	outer, upperOuter, upperInner, inner, lowerInner, lowerOuter := idx[0], idx[1], idx[2], idx[3], idx[4], idx[5]

	s[outer] = Point3D{X: cx + side*half, Y: eyeCenterY}
	s[inner] = Point3D{X: cx - side*half, Y: eyeCenterY}
	s[upperOuter] = Point3D{X: cx + side*0.01, Y: eyeCenterY - gap}
	s[lowerOuter] = Point3D{X: cx + side*0.01, Y: eyeCenterY + gap}
	s[upperInner] = Point3D{X: cx - side*0.01, Y: eyeCenterY - gap}
	s[lowerInner] = Point3D{X: cx - side*0.01, Y: eyeCenterY + gap}
}

// NeutralFace is a level face with open eyes and a closed mouth.
func NeutralFace() Set {
	return NewFace().Build()
}

// HandPose builds a right- or left-hand pose with the given fingers raised, in
// thumb, index, middle, ring, pinky order. The hand is upright with the wrist at
// the bottom of the frame.
func HandPose(handedness string, raised [5]bool) HandLandmarks {
	h := HandLandmarks{Handedness: handedness, Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70, Z: 0.03}
	h.Points[ThumbIP] = Point3D{X: 0.64, Y: 0.66, Z: 0.03}
	if raised[0] {
		h.Points[ThumbTip] = Point3D{X: 0.70, Y: 0.62, Z: 0.03}
	} else {
		h.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.68, Z: -0.02}
	}

	bases := [4]float64{0.55, 0.50, 0.45, 0.40}
	for f := 0; f < 4; f++ {
		mcp := IndexMCP + f*4
		x := bases[f]
		h.Points[mcp] = Point3D{X: x, Y: 0.68}
		if raised[f+1] {
			h.Points[mcp+1] = Point3D{X: x, Y: 0.55}
			h.Points[mcp+2] = Point3D{X: x, Y: 0.45}
			h.Points[mcp+3] = Point3D{X: x, Y: 0.35}
		} else {
			h.Points[mcp+1] = Point3D{X: x, Y: 0.64, Z: -0.05}
			h.Points[mcp+2] = Point3D{X: x - 0.01, Y: 0.68, Z: -0.04}
			h.Points[mcp+3] = Point3D{X: x - 0.02, Y: 0.71, Z: -0.02}
		}
	}

	if handedness == HandLeft {
		for i := range h.Points {
			h.Points[i].X = 1 - h.Points[i].X
		}
	}
	return h
}

// OpenPalmLandmarks returns a right hand with all five fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return HandPose(HandRight, [5]bool{true, true, true, true, true})
}

// FistLandmarks returns a right hand with every finger curled.
func FistLandmarks() HandLandmarks {
	return HandPose(HandRight, [5]bool{})
}

// ThumbsUpLandmarks returns a right hand with only the thumb extended, tip above the wrist.
func ThumbsUpLandmarks() HandLandmarks {
	return HandPose(HandRight, [5]bool{true, false, false, false, false})
}

// ThumbsDownLandmarks returns a right hand with only the thumb extended, pointing
// below the wrist.
func ThumbsDownLandmarks() HandLandmarks {
	h := ThumbsUpLandmarks()
	h.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.82}
	h.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.88}
	h.Points[ThumbTip] = Point3D{X: 0.64, Y: 0.94}
	return h
}

// PeaceLandmarks returns a right hand with index and middle fingers extended.
func PeaceLandmarks() HandLandmarks {
	return HandPose(HandRight, [5]bool{false, true, true, false, false})
}
