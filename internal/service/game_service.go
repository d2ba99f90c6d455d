// Package service implements the game's Connect RPC surface on top of the
// state store, the judging client, and the admin authenticator.
//
// All input validation that should reject a request before it reaches the
// state store lives here: empty names, duplicate group names, the group
// cap, unsupported image types, the time-up submission lock, and the
// judging preconditions. The reducer itself stays total and silent.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mememadness/server/internal/auth"
	"github.com/mememadness/server/internal/game"
	"github.com/mememadness/server/internal/judge"
	"github.com/mememadness/server/internal/metrics"
	"github.com/mememadness/server/internal/middleware"
	"github.com/mememadness/server/internal/models"
	"github.com/mememadness/server/internal/rpc"
)

// Validation errors surfaced to the originating user.
var (
	ErrEmptyUserName      = errors.New("please enter your name")
	ErrEmptyGroupName     = errors.New("please enter a group name")
	ErrDuplicateGroupName = errors.New("a group with this name already exists")
	ErrGroupsFull         = errors.New("the maximum number of groups has been reached")
	ErrGroupNotFound      = errors.New("group not found")
	ErrBadImageType       = errors.New("please upload a .jpg or .png file")
	ErrSubmissionLocked   = errors.New("time's up, submissions are locked")
	ErrGameNotStarted     = errors.New("the game has not started")
	ErrNothingToJudge     = errors.New("no memes have been submitted for judging")
	ErrJudgingNotReady    = errors.New("judging opens once time is up or every group has submitted")
	ErrJudgingInProgress  = errors.New("a judging round is already in progress")
)

// GameService coordinates one game session.
type GameService struct {
	store         *game.Store
	judge         judge.Client
	authenticator *auth.AdminAuthenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger

	// clock is injectable for tests; defaults to time.Now.
	clock func() time.Time

	// gameDuration is the submission window used when StartGame does not
	// specify one.
	gameDuration time.Duration

	// judging is the single-slot lock: at most one outstanding judging
	// round per session. A second call is rejected, not queued.
	judging atomic.Bool
}

// Options configures optional service behavior.
type Options struct {
	Clock        func() time.Time
	GameDuration time.Duration
}

// NewGameService creates the service. A zero Options selects time.Now and
// a 20 minute game.
func NewGameService(store *game.Store, judgeClient judge.Client, authenticator *auth.AdminAuthenticator, jwtManager *auth.JWTManager, logger *slog.Logger, opts Options) *GameService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.GameDuration == 0 {
		opts.GameDuration = 20 * time.Minute
	}
	return &GameService{
		store:         store,
		judge:         judgeClient,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
		clock:         opts.Clock,
		gameDuration:  opts.GameDuration,
	}
}

// dispatch applies an action and records it in the action counter.
func (s *GameService) dispatch(a game.Action) game.State {
	state := s.store.Dispatch(a)
	metrics.ActionsApplied.WithLabelValues(game.ActionName(a)).Inc()
	return state
}

// CreateUser registers the session's user from a name entry.
func (s *GameService) CreateUser(ctx context.Context, req *connect.Request[rpc.CreateUserRequest]) (*connect.Response[rpc.CreateUserResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrEmptyUserName)
	}

	user := models.User{ID: uuid.New().String(), Name: name}
	s.dispatch(game.SetUser{User: user})

	s.logger.Info("user created", "user_id", user.ID, "name", user.Name)
	return connect.NewResponse(&rpc.CreateUserResponse{User: toRPCUser(user)}), nil
}

// CreateGroup creates a new group with the caller as its first member.
func (s *GameService) CreateGroup(ctx context.Context, req *connect.Request[rpc.CreateGroupRequest]) (*connect.Response[rpc.CreateGroupResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrEmptyGroupName)
	}

	state := s.store.State()
	if state.GroupNameTaken(name) {
		return nil, connect.NewError(connect.CodeAlreadyExists, ErrDuplicateGroupName)
	}
	if len(state.Groups) >= game.MaxGroups {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrGroupsFull)
	}

	groupID := uuid.New().String()
	next := s.dispatch(game.CreateGroup{
		ID:      groupID,
		Name:    name,
		Creator: fromRPCUser(req.Msg.User),
	})

	created := next.FindGroup(groupID)
	if created == nil {
		// Lost a race against concurrent creations filling the cap.
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrGroupsFull)
	}

	s.logger.Info("group created", "group_id", groupID, "name", name)
	return connect.NewResponse(&rpc.CreateGroupResponse{Group: toRPCGroup(*created)}), nil
}

// JoinGroup appends the caller to an existing group.
func (s *GameService) JoinGroup(ctx context.Context, req *connect.Request[rpc.JoinGroupRequest]) (*connect.Response[rpc.JoinGroupResponse], error) {
	state := s.store.State()
	group := state.FindGroup(req.Msg.GroupID)
	if group == nil {
		return nil, connect.NewError(connect.CodeNotFound, ErrGroupNotFound)
	}
	if group.HasMember(req.Msg.User.ID) {
		return connect.NewResponse(&rpc.JoinGroupResponse{Group: toRPCGroup(*group)}), nil
	}

	next := s.dispatch(game.JoinGroup{GroupID: req.Msg.GroupID, User: fromRPCUser(req.Msg.User)})

	joined := next.FindGroup(req.Msg.GroupID)
	if joined == nil {
		// Lost a race against a reset removing the group.
		return nil, connect.NewError(connect.CodeNotFound, ErrGroupNotFound)
	}

	s.logger.Info("group joined", "group_id", req.Msg.GroupID, "user_id", req.Msg.User.ID)
	return connect.NewResponse(&rpc.JoinGroupResponse{Group: toRPCGroup(*joined)}), nil
}

// UploadMeme sets or replaces a group's submission.
func (s *GameService) UploadMeme(ctx context.Context, req *connect.Request[rpc.UploadMemeRequest]) (*connect.Response[rpc.UploadMemeResponse], error) {
	if !models.ValidMIMEType(req.Msg.MIMEType) {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrBadImageType)
	}
	if len(req.Msg.Data) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrBadImageType)
	}

	state := s.store.State()
	if state.FindGroup(req.Msg.GroupID) == nil {
		return nil, connect.NewError(connect.CodeNotFound, ErrGroupNotFound)
	}
	if state.TimeUp(s.clock()) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrSubmissionLocked)
	}

	meme := models.NewMeme(req.Msg.GroupID, req.Msg.Data, req.Msg.MIMEType)
	s.dispatch(game.UploadMeme{Meme: meme})

	s.logger.Info("meme uploaded",
		"group_id", req.Msg.GroupID,
		"mime_type", req.Msg.MIMEType,
		"size_bytes", len(req.Msg.Data),
	)
	return connect.NewResponse(&rpc.UploadMemeResponse{Meme: toRPCMeme(meme)}), nil
}

// DeleteMeme clears a group's submission.
func (s *GameService) DeleteMeme(ctx context.Context, req *connect.Request[rpc.DeleteMemeRequest]) (*connect.Response[rpc.DeleteMemeResponse], error) {
	state := s.store.State()
	if state.FindGroup(req.Msg.GroupID) == nil {
		return nil, connect.NewError(connect.CodeNotFound, ErrGroupNotFound)
	}
	if state.TimeUp(s.clock()) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrSubmissionLocked)
	}

	s.dispatch(game.DeleteMeme{GroupID: req.Msg.GroupID})

	s.logger.Info("meme deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&rpc.DeleteMemeResponse{}), nil
}

// GetState returns the current state snapshot.
func (s *GameService) GetState(ctx context.Context, req *connect.Request[rpc.GetStateRequest]) (*connect.Response[rpc.GetStateResponse], error) {
	state := s.store.State()
	return connect.NewResponse(&rpc.GetStateResponse{State: toRPCState(state, s.clock())}), nil
}

// StartGame opens the submission window. Admin only.
func (s *GameService) StartGame(ctx context.Context, req *connect.Request[rpc.StartGameRequest]) (*connect.Response[rpc.StartGameResponse], error) {
	duration := s.gameDuration
	if req.Msg.DurationMinutes > 0 {
		duration = time.Duration(req.Msg.DurationMinutes) * time.Minute
	}

	end := s.clock().Add(duration).UnixMilli()
	s.dispatch(game.StartGame{TimerEndTime: end})

	s.logger.Info("game started", "admin", middleware.AdminName(ctx), "timer_end", end, "duration", duration)
	return connect.NewResponse(&rpc.StartGameResponse{TimerEndTime: end}), nil
}

// Judge runs one judging round over all submitted memes. Admin only.
// At most one round may be in flight; a concurrent call is rejected.
func (s *GameService) Judge(ctx context.Context, req *connect.Request[rpc.JudgeRequest]) (*connect.Response[rpc.JudgeResponse], error) {
	state := s.store.State()
	if !state.GameStarted {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrGameNotStarted)
	}

	submissions := collectSubmissions(state)
	if len(submissions) == 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrNothingToJudge)
	}
	if !state.TimeUp(s.clock()) && state.SubmittedCount() != len(state.Groups) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, ErrJudgingNotReady)
	}

	if !s.judging.CompareAndSwap(false, true) {
		return nil, connect.NewError(connect.CodeAborted, ErrJudgingInProgress)
	}
	defer s.judging.Store(false)

	s.logger.Info("judging round started", "submissions", len(submissions))
	start := time.Now()
	winners, err := s.judge.Judge(ctx, submissions)
	metrics.JudgingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.JudgingRounds.WithLabelValues("error").Inc()
		s.logger.Error("judging round failed", "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, judge.ErrJudgingFailed)
	}
	metrics.JudgingRounds.WithLabelValues("ok").Inc()

	if len(winners) > game.MaxWinners {
		winners = winners[:game.MaxWinners]
	}
	s.dispatch(game.SetWinners{Winners: winners})

	s.logger.Info("judging round complete", "winners", len(winners))
	return connect.NewResponse(&rpc.JudgeResponse{Winners: toRPCWinners(winners)}), nil
}

// ResetGame wipes the game back to the lobby. Admin only.
func (s *GameService) ResetGame(ctx context.Context, req *connect.Request[rpc.ResetGameRequest]) (*connect.Response[rpc.ResetGameResponse], error) {
	s.dispatch(game.ResetGame{})
	s.logger.Info("game reset", "admin", middleware.AdminName(ctx))
	return connect.NewResponse(&rpc.ResetGameResponse{}), nil
}

// AdminLogin checks the static credentials and issues a session token.
func (s *GameService) AdminLogin(ctx context.Context, req *connect.Request[rpc.AdminLoginRequest]) (*connect.Response[rpc.AdminLoginResponse], error) {
	if err := s.authenticator.Authenticate(req.Msg.Username, req.Msg.Password); err != nil {
		s.logger.Warn("admin login failed", "username", req.Msg.Username)
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}

	admin := models.User{ID: "admin-user", Name: "Admin"}
	s.dispatch(game.AdminLogin{})
	s.dispatch(game.SetUser{User: admin})

	token, err := s.jwtManager.Generate(admin.Name)
	if err != nil {
		s.logger.Error("could not issue admin token", "error", err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("could not issue session token"))
	}

	s.logger.Info("admin logged in")
	return connect.NewResponse(&rpc.AdminLoginResponse{Token: token, User: toRPCUser(admin)}), nil
}

// AdminLogout clears the admin session. Admin only.
func (s *GameService) AdminLogout(ctx context.Context, req *connect.Request[rpc.AdminLogoutRequest]) (*connect.Response[rpc.AdminLogoutResponse], error) {
	s.dispatch(game.AdminLogout{})
	s.logger.Info("admin logged out", "admin", middleware.AdminName(ctx))
	return connect.NewResponse(&rpc.AdminLogoutResponse{}), nil
}

// Snapshot returns the current state in its wire form. Used by the
// WebSocket push path, which serves the same shape as GetState.
func (s *GameService) Snapshot() rpc.State {
	return toRPCState(s.store.State(), s.clock())
}

// collectSubmissions gathers every submitted meme in group creation order.
func collectSubmissions(state game.State) []judge.Submission {
	var subs []judge.Submission
	for _, g := range state.Groups {
		if g.Meme == nil {
			continue
		}
		subs = append(subs, judge.Submission{
			GroupName: g.Name,
			Image:     g.Meme.Data,
			MIMEType:  g.Meme.MIMEType,
		})
	}
	return subs
}
