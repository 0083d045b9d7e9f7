package features

// Column names of the recording table.
const (
	ChannelAccX = "ACC_X"
	ChannelAccY = "ACC_Y"
	ChannelAccZ = "ACC_Z"
	ChannelBVP  = "BVP"
	ChannelHR   = "HR"
	LabelColumn = "Sleep_Stage"
)

// Modality is one sensor category with its own feature groups.
type Modality int

const (
	ModalityIMU Modality = iota
	ModalityPPG
)

func (m Modality) String() string {
	switch m {
	case ModalityIMU:
		return "imu"
	case ModalityPPG:
		return "ppg"
	}
	return "unknown"
}

// RequiredChannels is the channel set a table must declare for the modality
// to be extracted. HR is optional for PPG.
func (m Modality) RequiredChannels() []string {
	switch m {
	case ModalityIMU:
		return []string{ChannelAccX, ChannelAccY, ChannelAccZ}
	case ModalityPPG:
		return []string{ChannelBVP}
	}
	return nil
}
