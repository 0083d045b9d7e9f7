package dataset

// Sleep stage labels as they appear in the Sleep_Stage column.
const (
	StagePreparation = "P"
	StageWake        = "W"
	StageN1          = "N1"
	StageN2          = "N2"
	StageN3          = "N3"
	StageREM         = "R"
	StageMissing     = "Missing"
)

// Four-class targets used by the on-device model.
const (
	ClassWake  = "Wake"
	ClassLight = "Light"
	ClassDeep  = "Deep"
	ClassREM   = "REM"
)

var stageCodes = map[string]int{
	StagePreparation: -1,
	StageWake:        0,
	StageN1:          1,
	StageN2:          2,
	StageN3:          3,
	StageREM:         4,
	StageMissing:     -2,
}

// EncodeStage maps a stage label to its numeric code. ok is false for labels
// outside the vocabulary.
func EncodeStage(stage string) (code int, ok bool) {
	code, ok = stageCodes[stage]
	return code, ok
}

// IsScoredStage reports whether stage is one of W, N1, N2, N3 or R.
func IsScoredStage(stage string) bool {
	code, ok := stageCodes[stage]
	return ok && code >= 0
}

// FourClass merges N1 and N2 into Light. ok is false for unscored labels.
func FourClass(stage string) (class string, ok bool) {
	switch stage {
	case StageWake:
		return ClassWake, true
	case StageN1, StageN2:
		return ClassLight, true
	case StageN3:
		return ClassDeep, true
	case StageREM:
		return ClassREM, true
	}
	return "", false
}
