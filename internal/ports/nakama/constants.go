package nakama

const (
	// RpcFindScoreboard is the Nakama RPC id clients call to find or create
	// a joinable scoreboard match for a game.
	RpcFindScoreboard = "find_scoreboard"

	// RpcFeedToken is the Nakama RPC id clients call to mint a live-feed
	// access token.
	RpcFeedToken = "feed_token"

	// MatchNameCourtside is the authoritative match handler name registered
	// with Nakama.
	MatchNameCourtside = "courtside_match"
)

// Op codes for client commands and server events.
const (
	// Client -> Server
	OpRecordStat       int64 = 1
	OpSubstitute       int64 = 2
	OpClockControl     int64 = 3
	OpAdvancePeriod    int64 = 4
	OpUndo             int64 = 5
	OpResolveSequence  int64 = 6
	OpCallTimeout      int64 = 7
	OpConfirmViolation int64 = 8
	OpOutOfBounds      int64 = 9
	OpJumpBall         int64 = 10
	OpCancelGame       int64 = 11

	// Server -> Client events
	OpStateSnapshot    int64 = 101
	OpClockUpdate      int64 = 102
	OpStatRecorded     int64 = 103
	OpStatPersisted    int64 = 104
	OpStatWriteFailed  int64 = 105
	OpSubApplied       int64 = 106
	OpSubWriteFailed   int64 = 107
	OpQuarterAdvanced  int64 = 108
	OpOvertimeStarted  int64 = 109
	OpGameCompleted    int64 = 110
	OpGameCancelled    int64 = 111
	OpShotClockAlert   int64 = 112
	OpSequenceOpened   int64 = 113
	OpSequenceClosed   int64 = 114
	OpBonusActivated   int64 = 115
	OpFoulTrouble      int64 = 116
	OpTimeoutCalled    int64 = 117
	OpPossessionChange int64 = 118
	OpUndoApplied      int64 = 119
	OpCommandError     int64 = 120
)
