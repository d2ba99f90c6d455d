// Package rpc defines the Connect service contract: procedure names, the
// request/response message types, and the JSON codec that carries them.
//
// Messages are hand-defined structs rather than generated code; the wire
// shape is plain JSON negotiated through Connect's codec mechanism.
package rpc

// Procedure paths for the game service.
const (
	ProcedureCreateUser  = "/mememadness.v1.GameService/CreateUser"
	ProcedureCreateGroup = "/mememadness.v1.GameService/CreateGroup"
	ProcedureJoinGroup   = "/mememadness.v1.GameService/JoinGroup"
	ProcedureUploadMeme  = "/mememadness.v1.GameService/UploadMeme"
	ProcedureDeleteMeme  = "/mememadness.v1.GameService/DeleteMeme"
	ProcedureGetState    = "/mememadness.v1.GameService/GetState"
	ProcedureStartGame   = "/mememadness.v1.GameService/StartGame"
	ProcedureJudge       = "/mememadness.v1.GameService/Judge"
	ProcedureResetGame   = "/mememadness.v1.GameService/ResetGame"
	ProcedureAdminLogin  = "/mememadness.v1.GameService/AdminLogin"
	ProcedureAdminLogout = "/mememadness.v1.GameService/AdminLogout"
)

// User mirrors models.User on the wire.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Meme describes a group's submission without the raw payload; the preview
// data URL is enough for clients to render it.
type Meme struct {
	GroupID  string `json:"groupId"`
	MIMEType string `json:"mimeType"`
	Preview  string `json:"preview"`
}

// Group mirrors models.Group on the wire.
type Group struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members []User `json:"members"`
	Meme    *Meme  `json:"meme,omitempty"`
}

// Winner is one judging result entry.
type Winner struct {
	GroupName     string `json:"groupName"`
	Justification string `json:"justification"`
}

// State is the full game state snapshot served to clients. The remaining
// fields carry the countdown split server-side, so displays agree on the
// server clock instead of each deriving their own.
type State struct {
	User             *User    `json:"user,omitempty"`
	Groups           []Group  `json:"groups"`
	GameStarted      bool     `json:"gameStarted"`
	TimerEndTime     *int64   `json:"timerEndTime"`
	RemainingMinutes int      `json:"remainingMinutes"`
	RemainingSeconds int      `json:"remainingSeconds"`
	Winners          []Winner `json:"winners"`
	IsAdmin          bool     `json:"isAdmin"`
	TimeUp           bool     `json:"timeUp"`
}

type CreateUserRequest struct {
	Name string `json:"name"`
}

type CreateUserResponse struct {
	User User `json:"user"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
	User User   `json:"user"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type JoinGroupRequest struct {
	GroupID string `json:"groupId"`
	User    User   `json:"user"`
}

type JoinGroupResponse struct {
	Group Group `json:"group"`
}

// UploadMemeRequest carries the raw image; Data is base64 in transit by
// virtue of JSON []byte encoding.
type UploadMemeRequest struct {
	GroupID  string `json:"groupId"`
	Data     []byte `json:"data"`
	MIMEType string `json:"mimeType"`
}

type UploadMemeResponse struct {
	Meme Meme `json:"meme"`
}

type DeleteMemeRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteMemeResponse struct{}

type GetStateRequest struct{}

type GetStateResponse struct {
	State State `json:"state"`
}

// StartGameRequest opens the submission window. A zero duration selects
// the server's configured default.
type StartGameRequest struct {
	DurationMinutes int `json:"durationMinutes"`
}

type StartGameResponse struct {
	TimerEndTime int64 `json:"timerEndTime"`
}

type JudgeRequest struct{}

type JudgeResponse struct {
	Winners []Winner `json:"winners"`
}

type ResetGameRequest struct{}

type ResetGameResponse struct{}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type AdminLogoutRequest struct{}

type AdminLogoutResponse struct{}
