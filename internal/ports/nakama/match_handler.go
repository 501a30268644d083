package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"eleven/internal/app"
	"eleven/internal/bot"
	"eleven/internal/config"
	"eleven/internal/domain"
	"eleven/internal/ports"
)

// nextRoundDelayTicks is how many ticks the scoring screen stays up before
// the next round is dealt automatically.
const nextRoundDelayTicks = 4

// MatchLabel is the JSON label advertised for quick-match queries.
type MatchLabel struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
	Mode  string `json:"mode"`
}

// MatchState holds the authoritative runtime state for the Nakama match
// handler.
type MatchState struct {
	Mode      domain.GameMode
	SeatCount int
	Seats     []string // user ids in seat order, "" means empty
	OwnerSeat int
	Tick      int64

	Presences map[string]runtime.Presence
	App       *app.Service
	Game      *domain.GameState

	BotsEnabled      bool
	BotMinDelay      int
	BotMaxDelay      int
	BotAutoFillDelay int
	BotWaitUntil     int64
	SoloHumanTick    int64
	ScoringSince     int64
	Bots             map[string]*bot.Agent

	Stats ports.StatsPort

	rng *rand.Rand
}

func (ms *MatchState) openSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) occupiedSeatCount() int {
	return ms.SeatCount - ms.openSeatCount()
}

func (ms *MatchState) humanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !bot.IsBot(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat == userID {
			return i
		}
	}
	return -1
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userID := seats[seatIndex]
	return userID != "" && !bot.IsBot(userID)
}

// findFirstHumanSeat returns the first seat with a human occupant or -1.
func findFirstHumanSeat(seats []string) int {
	for i, userID := range seats {
		if userID != "" && !bot.IsBot(userID) {
			return i
		}
	}
	return -1
}

// seatSubstituteBot fills a vacated seat with a bot agent so an in-progress
// game keeps moving. An identity already seated elsewhere is replaced by an
// unseated synthetic one.
func (ms *MatchState) seatSubstituteBot(seat int) (string, error) {
	identity := bot.GetBotIdentity(seat)
	for n := seat; ms.seatOf(identity.UserID) >= 0; n += ms.SeatCount {
		identity = bot.SyntheticIdentity(n)
	}

	agent, err := bot.NewAgent(identity.UserID, ms.rng)
	if err != nil {
		return "", err
	}
	ms.Seats[seat] = identity.UserID
	ms.Bots[identity.UserID] = agent
	return identity.UserID, nil
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// playCardRequest is the client payload for OpPlayCard.
type playCardRequest struct {
	HandCardID     string   `json:"hand_card_id"`
	CaptureCardIDs []string `json:"capture_card_ids"`
}

// lobbySnapshot is broadcast whenever seating changes.
type lobbySnapshot struct {
	Seats     []string           `json:"seats"`
	OwnerSeat int                `json:"owner_seat"`
	Players   []lobbyPlayerState `json:"players"`
}

type lobbyPlayerState struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
	IsBot       bool   `json:"is_bot"`
	IsOwner     bool   `json:"is_owner"`
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	mode := domain.Mode1v1
	if v, ok := params["mode"].(string); ok && v == string(domain.Mode2v2) {
		mode = domain.Mode2v2
	}
	seatCount := 2
	if mode == domain.Mode2v2 {
		seatCount = 4
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	minDelay, maxDelay, autoFill := config.BotDelays()

	state := &MatchState{
		Mode:             mode,
		SeatCount:        seatCount,
		Seats:            make([]string, seatCount),
		OwnerSeat:        -1,
		Tick:             time.Now().Unix(),
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(rng),
		BotsEnabled:      true,
		BotMinDelay:      minDelay,
		BotMaxDelay:      maxDelay,
		BotAutoFillDelay: autoFill,
		Bots:             make(map[string]*bot.Agent),
		Stats:            NewNakamaStatsAdapter(nk),
		rng:              rng,
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["eleven_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["eleven_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["eleven_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["eleven_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			state.BotAutoFillDelay = i
		}
	}

	tickRate := 1
	return state, tickRate, buildLabel(state)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat or a replaceable bot pre-game.
	if matchState.openSeatCount() <= 0 {
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if bot.IsBot(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserID := range matchState.Seats {
				if bot.IsBot(seatUserID) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, p.GetUserId(), i)
					delete(matchState.Bots, seatUserID)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", p.GetUserId())
		}
	}

	if !isHumanSeat(matchState.Seats, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobby(matchState, dispatcher, OpPlayerJoined)

	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		seat := matchState.seatOf(p.GetUserId())
		if seat < 0 {
			continue
		}
		matchState.Seats[seat] = ""
		logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), seat)

		// A vacated seat mid-game would stall the turn loop: the engine keeps
		// waiting on a player who can no longer act. Hand the seat to a bot.
		if matchState.Game != nil && matchState.BotsEnabled {
			botID, err := matchState.seatSubstituteBot(seat)
			if err != nil {
				logger.Error("MatchLeave: Failed to seat a substitute bot: %v", err)
				continue
			}
			logger.Info("MatchLeave: Seat %d handed to bot %s mid-game.", seat, botID)
		}
	}

	matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats)
	if matchState.OwnerSeat < 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobby(matchState, dispatcher, OpPlayerLeft)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpNextRound:
			mh.handleNextRound(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}
	mh.processScoring(ctx, matchState, dispatcher, logger)

	return matchState
}

// processBots fills lonely lobbies with bot seats and plays bot turns after a
// randomized think delay.
func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil {
		humanCount := state.humanPlayerCount()
		if humanCount == 1 && state.openSeatCount() > 0 {
			if state.SoloHumanTick == 0 {
				state.SoloHumanTick = state.Tick
			}
			if state.Tick-state.SoloHumanTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(i)
					botID := identity.UserID
					state.Seats[i] = botID

					agent, err := bot.NewAgent(botID, state.rng)
					if err != nil {
						logger.Error("processBots: Failed to create bot agent for %s: %v", botID, err)
						continue
					}
					state.Bots[botID] = agent
					logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, botID, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastLobby(state, dispatcher, OpPlayerJoined)
				}
				state.SoloHumanTick = 0
			}
		} else {
			state.SoloHumanTick = 0
		}
		return
	}

	if state.Game.Phase != domain.PhasePlaying {
		state.BotWaitUntil = 0
		return
	}

	currentTurn := state.Game.ActivePlayerIndex
	currentUserID := state.Seats[currentTurn]
	if !bot.IsBot(currentUserID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.rng.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[currentUserID]
	if !exists {
		var err error
		agent, err = bot.NewAgent(currentUserID, state.rng)
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[currentUserID] = agent
	}

	move, err := agent.PlayAtSeat(state.Game, currentTurn)
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", currentUserID, err)
		return
	}

	next, events, err := state.App.PlayCard(state.Game, currentTurn, move.HandCardID, move.CaptureCardIDs)
	if err != nil {
		logger.Error("processBots: Bot %s move rejected: %v", currentUserID, err)
		return
	}
	state.Game = next
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// processScoring advances a scored round automatically after a short pause so
// matches keep moving even with no owner input.
func (mh *matchHandler) processScoring(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.Game.Phase != domain.PhaseScoring {
		state.ScoringSince = 0
		return
	}
	if state.ScoringSince == 0 {
		state.ScoringSince = state.Tick
		return
	}
	if state.Tick-state.ScoringSince < nextRoundDelayTicks {
		return
	}
	state.ScoringSince = 0

	next, events, err := state.App.NextRound(state.Game)
	if err != nil {
		logger.Error("processScoring: Failed to start next round: %v", err)
		return
	}
	state.Game = next
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := state.seatOf(msg.GetUserId())

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", msg.GetUserId(), state.OwnerSeat)
		return
	}
	if state.Game != nil {
		logger.Warn("StartGame: Game already in progress.")
		return
	}
	if state.occupiedSeatCount() != state.SeatCount {
		logger.Warn("StartGame: Cannot start with %d/%d seats filled.", state.occupiedSeatCount(), state.SeatCount)
		return
	}

	seats := make([]app.Seat, state.SeatCount)
	for i, userID := range state.Seats {
		name := userID
		if p, exists := state.Presences[userID]; exists {
			name = p.GetUsername()
		} else if n := bot.GetBotUsername(userID); n != "" {
			name = n
		}
		seats[i] = app.Seat{UserID: userID, Name: name, IsBot: bot.IsBot(userID)}
	}

	game, events, err := state.App.StartMatch(seats, -1, state.Mode)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		return
	}
	state.Game = game

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}

	logger.Info("StartGame: Game started with %d players in mode %s.", state.SeatCount, state.Mode)
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	if state.Game == nil {
		logger.Warn("handlePlayCard: Game not started.")
		return
	}

	var request playCardRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Error("handlePlayCard: Failed to unmarshal request: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
		return
	}

	next, events, err := state.App.PlayCard(state.Game, senderSeat, request.HandCardID, request.CaptureCardIDs)
	if err != nil {
		logger.Warn("handlePlayCard: User %s (seat %d) failed to play card: %v", senderID, senderSeat, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Game = next

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleNextRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderSeat := state.seatOf(msg.GetUserId())
	if senderSeat != state.OwnerSeat {
		return
	}
	if state.Game == nil {
		return
	}

	next, events, err := state.App.NextRound(state.Game)
	if err != nil {
		logger.Warn("handleNextRound: %v", err)
		return
	}
	state.Game = next
	state.ScoringSince = 0

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent converts app events to opcodes and dispatches them,
// honoring targeted recipients.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64

	switch ev.Kind {
	case app.EventMatchStarted:
		opCode = OpMatchStarted
	case app.EventHandDealt:
		opCode = OpHandDealt
	case app.EventMovePlayed:
		opCode = OpMovePlayed
	case app.EventScopaScored:
		opCode = OpScopaScored
	case app.EventCardsDealt:
		opCode = OpCardsDealt
	case app.EventRoundStarted:
		opCode = OpRoundStarted
	case app.EventRoundEnded:
		opCode = OpRoundEnded
	case app.EventMatchEnded:
		opCode = OpMatchEnded
		mh.settleMatch(ctx, state, logger, ev)
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events whose recipients are all offline (bots) must not
		// fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleMatch records win/loss stats and returns the table to the lobby.
func (mh *matchHandler) settleMatch(ctx context.Context, state *MatchState, logger runtime.Logger, ev app.Event) {
	payload, ok := ev.Payload.(app.MatchEndedPayload)
	if !ok || state.Game == nil {
		return
	}

	results := make([]ports.MatchResult, 0, len(state.Game.Players))
	for i := range state.Game.Players {
		p := &state.Game.Players[i]
		if p.IsBot {
			continue
		}
		won := false
		score := p.Score
		if state.Game.GameMode == domain.Mode2v2 {
			won = p.TeamIndex == payload.WinnerIndex
			score = state.Game.Teams[p.TeamIndex].Score
		} else {
			won = i == payload.WinnerIndex
		}
		results = append(results, ports.MatchResult{
			UserID: p.ID,
			Name:   p.Name,
			Won:    won,
			Score:  score,
		})
	}

	if state.Stats != nil {
		if err := state.Stats.RecordResults(ctx, results); err != nil {
			logger.Error("settleMatch: Failed to record results: %v", err)
		}
	}

	state.Game = nil
}

// sendError sends a game error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	payload, err := json.Marshal(map[string]any{"code": code, "message": message})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, payload, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) broadcastLobby(state *MatchState, dispatcher runtime.MatchDispatcher, opCode int64) {
	snapshot := lobbySnapshot{
		Seats:     state.Seats,
		OwnerSeat: state.OwnerSeat,
	}
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		displayName := userID
		if p, exists := state.Presences[userID]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotUsername(userID); name != "" {
			displayName = name
		}
		snapshot.Players = append(snapshot.Players, lobbyPlayerState{
			UserID:      userID,
			Seat:        i,
			DisplayName: displayName,
			IsBot:       bot.IsBot(userID),
			IsOwner:     i == state.OwnerSeat,
		})
	}

	bytes, _ := json.Marshal(snapshot)
	dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true)
}

func buildLabel(state *MatchState) string {
	phase := "lobby"
	if state.Game != nil {
		phase = "playing"
	}
	label := MatchLabel{
		Open:  state.Game == nil && state.openSeatCount() > 0,
		Game:  "eleven",
		Phase: phase,
		Mode:  string(state.Mode),
	}
	bytes, _ := json.Marshal(label)
	return string(bytes)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(buildLabel(state)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
