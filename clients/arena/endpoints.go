package arena

const (
	// Paths mirror the platform's REST layout.
	pathActiveSession   = "/api/phase-one/student-game-status"
	pathSessionStatus   = "/api/game-session/%d/status"
	pathSessionTiming   = "/api/game-session/%d/timing"
	pathMatchDetails    = "/api/phase-one/match_details"
	pathPublicTests     = "/api/phase-one/tests"
	pathParticipantTest = "/api/phase-one/student_test"
	pathSubmitSolution  = "/api/phase-one/solution"
	pathAssignments     = "/api/phase-two/assigned_solutions"
	pathVote            = "/api/phase-two/vote"
	pathComputeScores   = "/api/student-results/calculate-scores/game/%d"
	pathEvaluateBadges  = "/api/badges/evaluate/%d"
	pathPersonalResult  = "/api/student-results/solution/student/%d/game/%d"

	jsonContentType = "application/json"
)
