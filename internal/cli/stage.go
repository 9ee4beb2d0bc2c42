package cli

// Stage is a step of a flashcard generation run.
type Stage int

const (
	StageInit Stage = iota
	StageLoadingNotes
	StagePrompting
	StageAwaitingModel
	StageValidating
	StageConverting
	StageWriting
	StageDone
	StageFailed
)

func (stage Stage) String() string {
	switch stage {
	case StageInit:
		return "Init"
	case StageLoadingNotes:
		return "LoadingNotes"
	case StagePrompting:
		return "Prompting"
	case StageAwaitingModel:
		return "AwaitingModel"
	case StageValidating:
		return "Validating"
	case StageConverting:
		return "Converting"
	case StageWriting:
		return "Writing"
	case StageDone:
		return "Done"
	case StageFailed:
		return "Failed"
	}
	return "Unknown"
}
