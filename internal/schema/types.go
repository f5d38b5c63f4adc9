package schema

// SchemaVersion is the current version of the grading result contract.
const SchemaVersion = "1.0"

// Rating is the three-level grade assigned to an exercise.
type Rating string

// Rating values accepted by the grading contract.
const (
	RatingExcellent Rating = "EXCELLENT"
	RatingOK        Rating = "OK"
	RatingNeedsWork Rating = "NEEDS_WORK"
)

// Flags the grader itself emits. The wire format keeps flags as an open
// string list for forward compatibility; these constants cover every value
// the system produces.
const (
	FlagNotExecuted          = "not_executed"
	FlagManualReview         = "manual_review"
	FlagPossiblePlagiarism   = "possible_plagiarism"
	FlagIncomplete           = "incomplete"
	FlagCopyPaste            = "copy_paste"
	FlagOptionalNotAttempted = "optional_not_attempted"
	FlagMissingDataFile      = "missing_data_file"
)

// Evidence cites a specific notebook cell supporting a grading decision.
type Evidence struct {
	CellIndex int    `json:"cell_index" validate:"gte=0"`
	Excerpt   string `json:"excerpt" validate:"required,max=1500"`
}

// ExerciseGrade is the grading outcome for a single exercise.
type ExerciseGrade struct {
	ExerciseID     string     `json:"exercise_id" validate:"required"`
	Rating         Rating     `json:"rating" validate:"required,oneof=EXCELLENT OK NEEDS_WORK"`
	Rationale      string     `json:"rationale" validate:"required,max=500"`
	Evidence       []Evidence `json:"evidence" validate:"dive"`
	MissingOrWrong []string   `json:"missing_or_wrong"`
	Flags          []string   `json:"flags"`
}

// GradingResult is the complete, validated grading output for one submission.
// It is the sole artifact persisted to disk or returned over HTTP.
type GradingResult struct {
	SchemaVersion  string          `json:"schema_version"`
	RouteID        *string         `json:"route_id"`
	StudentID      *string         `json:"student_id"`
	Exercises      []ExerciseGrade `json:"exercises" validate:"dive"`
	OverallSummary string          `json:"overall_summary" validate:"required,max=1000"`
}

// Normalize fills the schema version default and replaces nil list fields
// with empty slices so serialized results never contain null arrays.
func (r *GradingResult) Normalize() {
	if r.SchemaVersion == "" {
		r.SchemaVersion = SchemaVersion
	}
	if r.Exercises == nil {
		r.Exercises = []ExerciseGrade{}
	}
	for i := range r.Exercises {
		if r.Exercises[i].Evidence == nil {
			r.Exercises[i].Evidence = []Evidence{}
		}
		if r.Exercises[i].MissingOrWrong == nil {
			r.Exercises[i].MissingOrWrong = []string{}
		}
		if r.Exercises[i].Flags == nil {
			r.Exercises[i].Flags = []string{}
		}
	}
}
