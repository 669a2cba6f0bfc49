package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"courtside/internal/app"
	"courtside/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// FindScoreboardResponse is the payload returned to clients looking for a
// live scoreboard match.
type FindScoreboardResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// FeedTokenResponse carries a minted live-feed token.
type FeedTokenResponse struct {
	Token string `json:"token"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcFindScoreboard, rpcFindScoreboard); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcFeedToken, rpcFeedToken)
}

// rpcFindScoreboard finds an open scoreboard match, or creates one from the
// setup carried in the payload.
//
// Payload: optional MatchSetup JSON. When a game_id is given the search is
// skipped and a fresh match is created for that game.
// Returns: FindScoreboardResponse JSON.
func rpcFindScoreboard(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var setup MatchSetup
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &setup); err != nil {
			return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
		}
	}

	if setup.GameID == "" {
		// Spectator path: join any open scoreboard.
		query := fmt.Sprintf("+label.game:courtside +label.%s:>=1", MatchLabelKey_Open)
		limit := 1
		authoritative := true
		matches, err := nk.MatchList(ctx, limit, authoritative, "", nil, nil, query)
		if err != nil {
			logger.Error("rpcFindScoreboard [User:%s]: Failed to list matches: %v", userId, err)
			return "", err
		}
		if len(matches) > 0 {
			resp := FindScoreboardResponse{MatchID: matches[0].MatchId, IsNew: false}
			b, _ := json.Marshal(resp)
			return string(b), nil
		}
		return "", runtime.NewError("No open scoreboard found", 5) // NOT_FOUND
	}

	// Scorer path: create the authoritative match for this game.
	if setup.ScorerUserID == "" {
		setup.ScorerUserID = userId
	}
	setupBytes, err := json.Marshal(setup)
	if err != nil {
		return "", runtime.NewError("Invalid setup", 3)
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameCourtside, map[string]interface{}{"setup": string(setupBytes)})
	if err != nil {
		logger.Error("rpcFindScoreboard [User:%s]: Failed to create match: %v", userId, err)
		return "", err
	}

	logger.Info("rpcFindScoreboard [User:%s]: Created scoreboard %s for game %s", userId, matchID, setup.GameID)
	resp := FindScoreboardResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcFeedToken mints a signed feed token for the calling user.
//
// Payload: {"game_id": "...", "role": "scorer" | "spectator"}
// Returns: FeedTokenResponse JSON.
func rpcFeedToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userId == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	var req struct {
		GameID string `json:"game_id"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3)
	}
	if req.Role == "" {
		req.Role = app.FeedRoleSpectator
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["courtside_feed_secret"]
	issuer := env["courtside_feed_issuer"]
	if issuer == "" {
		if cfg := config.GetGameConfig(); cfg != nil && cfg.FeedTokenIssuer != "" {
			issuer = cfg.FeedTokenIssuer
		} else {
			issuer = "courtside"
		}
	}
	if secret == "" {
		return "", runtime.NewError("Feed tokens are not configured", 13) // INTERNAL
	}

	svc := app.NewFeedTokenService(secret, issuer, config.GetFeedTokenTTL())
	token, err := svc.GenerateToken(userId, req.GameID, req.Role)
	if err != nil {
		logger.Error("rpcFeedToken [User:%s]: %v", userId, err)
		return "", runtime.NewError("Failed to mint feed token", 13)
	}

	b, _ := json.Marshal(FeedTokenResponse{Token: token})
	return string(b), nil
}
