package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mememadness/server/internal/auth"
	"github.com/mememadness/server/internal/middleware"
	"github.com/mememadness/server/internal/rpc"
)

// ServicePrefix is the path prefix all game procedures live under.
const ServicePrefix = "/mememadness.v1.GameService/"

// NewGameServiceHandler mounts every game procedure on a single handler.
// Player procedures are open; admin procedures require a valid session
// token issued by AdminLogin.
func NewGameServiceHandler(svc *GameService, jwtManager *auth.JWTManager, logger *slog.Logger) (string, http.Handler) {
	open := []connect.HandlerOption{
		rpc.WithJSONCodec(),
		connect.WithInterceptors(middleware.LoggingInterceptor(logger)),
	}
	admin := []connect.HandlerOption{
		rpc.WithJSONCodec(),
		connect.WithInterceptors(
			middleware.LoggingInterceptor(logger),
			middleware.RequireAdmin(jwtManager),
		),
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.ProcedureCreateUser, connect.NewUnaryHandler(rpc.ProcedureCreateUser, svc.CreateUser, open...))
	mux.Handle(rpc.ProcedureCreateGroup, connect.NewUnaryHandler(rpc.ProcedureCreateGroup, svc.CreateGroup, open...))
	mux.Handle(rpc.ProcedureJoinGroup, connect.NewUnaryHandler(rpc.ProcedureJoinGroup, svc.JoinGroup, open...))
	mux.Handle(rpc.ProcedureUploadMeme, connect.NewUnaryHandler(rpc.ProcedureUploadMeme, svc.UploadMeme, open...))
	mux.Handle(rpc.ProcedureDeleteMeme, connect.NewUnaryHandler(rpc.ProcedureDeleteMeme, svc.DeleteMeme, open...))
	mux.Handle(rpc.ProcedureGetState, connect.NewUnaryHandler(rpc.ProcedureGetState, svc.GetState, open...))
	mux.Handle(rpc.ProcedureAdminLogin, connect.NewUnaryHandler(rpc.ProcedureAdminLogin, svc.AdminLogin, open...))

	mux.Handle(rpc.ProcedureStartGame, connect.NewUnaryHandler(rpc.ProcedureStartGame, svc.StartGame, admin...))
	mux.Handle(rpc.ProcedureJudge, connect.NewUnaryHandler(rpc.ProcedureJudge, svc.Judge, admin...))
	mux.Handle(rpc.ProcedureResetGame, connect.NewUnaryHandler(rpc.ProcedureResetGame, svc.ResetGame, admin...))
	mux.Handle(rpc.ProcedureAdminLogout, connect.NewUnaryHandler(rpc.ProcedureAdminLogout, svc.AdminLogout, admin...))

	return ServicePrefix, mux
}
