package errs

import "errors"

var (
	InvalidRequest      = errors.New("invalid submission request")
	DuplicateSubmission = errors.New("test already submitted for this email")
	EvaluationTimeout   = errors.New("submission evaluation deadline exceeded")
	BackendUnavailable  = errors.New("execution backend unavailable")
	PersistenceConflict = errors.New("concurrent submission committed first")

	TestNotFound     = errors.New("no test found with that id")
	QuestionNotFound = errors.New("no question found with that id")
	ResultNotFound   = errors.New("no result found for that test")
	TestNotStarted   = errors.New("test has not started yet")
	TestOver         = errors.New("test is over")
	NotOwner         = errors.New("you are not allowed to access this resource")
)
