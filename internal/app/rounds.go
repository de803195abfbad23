package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/protocol"
)

// transition moves the session to a new phase
func (c *Coordinator) transition(to domain.Phase) error {
	from := c.session.Phase
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	c.session.Phase = to
	c.logger.Debug("phase changed", "from", from, "to", to, "round", c.session.Round)
	return nil
}

// StartGame resets scores and starts round one
func (c *Coordinator) StartGame() error {
	if c.session.Phase != domain.PhaseLobby {
		return domain.ErrInvalidPhase
	}
	c.session.ResetScores()
	c.session.Round = 1
	c.logger.Info("game started", "players", len(c.session.Players), "theme", c.session.Theme)
	return c.startRound()
}

// startRound clears round data, picks a fresh prompt and enters PROMPT
func (c *Coordinator) startRound() error {
	if err := c.transition(domain.PhasePrompt); err != nil {
		return err
	}
	c.timers.cancel(timerPhase)
	c.session.ResetRound()
	c.session.TimerSeconds = 0

	pool := c.opts.Themes[c.session.Theme].Prompts
	c.session.CurrentPrompt, c.session.UsedPrompts = PickPrompt(c.rng, pool, c.session.UsedPrompts)

	c.broadcastState()
	c.timers.schedule(timerPhase, c.opts.ReadDelay, c.enterInput)
	return nil
}

// enterInput starts the answer countdown once the prompt has been read
func (c *Coordinator) enterInput() {
	if c.session.Phase != domain.PhasePrompt {
		return
	}
	if err := c.transition(domain.PhaseInput); err != nil {
		c.logger.Error("failed to enter input", "error", err)
		return
	}
	c.session.TimerSeconds = c.session.Settings.RoundDuration
	c.broadcastState()
	c.timers.schedule(timerPhase, countdownTick, c.countdown)
}

// countdown runs once per second during INPUT
func (c *Coordinator) countdown() {
	if c.session.Phase != domain.PhaseInput {
		return
	}
	c.session.TimerSeconds--
	if c.session.TimerSeconds <= 0 {
		c.session.TimerSeconds = 0
		c.autofill()
		c.enterVoting()
		return
	}
	c.broadcastState()
	c.timers.schedule(timerPhase, countdownTick, c.countdown)
}

// autofill gives every player without a submission a placeholder answer
func (c *Coordinator) autofill() {
	for _, p := range c.session.Players {
		if _, ok := c.session.SubmissionBy(p.ID); ok {
			continue
		}
		text := autofillTexts[c.rng.Intn(len(autofillTexts))]
		_ = c.session.AddSubmission(domain.NewSubmission(p.ID, text, domain.SourceAI, domain.AutopilotAgent))
		c.logger.Debug("autofilled submission", "transportID", p.ID)
	}
}

// enterVoting shuffles the submissions and opens voting
func (c *Coordinator) enterVoting() {
	if err := c.transition(domain.PhaseVoting); err != nil {
		c.logger.Error("failed to enter voting", "error", err)
		return
	}
	c.timers.cancel(timerPhase)
	c.session.ShuffleSubmissions(c.rng)
	c.session.FinishedVotingIDs = []string{}
	c.session.TimerSeconds = 0
	c.broadcastState()
}

// startReveal closes voting and reveals the first submission
func (c *Coordinator) startReveal() {
	if err := c.transition(domain.PhaseReveal); err != nil {
		c.logger.Error("failed to enter reveal", "error", err)
		return
	}
	c.session.RevealIndex = -1
	c.session.RevealStep = 0
	c.nextReveal()
}

// nextReveal moves to the next submission, or ends the round after the last
func (c *Coordinator) nextReveal() {
	c.timers.cancel(timerPhase)
	if !c.session.HasMoreReveals() {
		c.endRound()
		return
	}
	c.session.RevealIndex++
	c.session.RevealStep = 0
	c.broadcastState()
	c.timers.schedule(timerPhase, c.opts.RevealCadence, c.revealTick)
}

// revealTick advances the reveal animation of the current submission
func (c *Coordinator) revealTick() {
	if c.session.Phase != domain.PhaseReveal {
		return
	}
	c.advanceReveal()
}

func (c *Coordinator) advanceReveal() {
	if c.session.RevealStep >= c.opts.RevealSteps {
		c.nextReveal()
		return
	}
	c.session.RevealStep++
	c.broadcastState()
	c.timers.schedule(timerPhase, c.opts.RevealCadence, c.revealTick)
}

// NextRevealStep lets the host skip ahead in the reveal
func (c *Coordinator) NextRevealStep() error {
	if c.session.Phase != domain.PhaseReveal {
		return domain.ErrInvalidPhase
	}
	c.advanceReveal()
	return nil
}

// endRound scores the round and enters FINISH
func (c *Coordinator) endRound() {
	c.timers.cancel(timerPhase)
	if err := c.transition(domain.PhaseFinish); err != nil {
		c.logger.Error("failed to finish round", "error", err)
		return
	}
	deltas := domain.ScoreRound(c.session.Submissions)
	c.session.ApplyScores(deltas)
	c.logger.Info("round finished", "round", c.session.Round, "submissions", len(c.session.Submissions))
	c.broadcastState()
}

// NextRound starts the following round
func (c *Coordinator) NextRound() error {
	if c.session.Phase != domain.PhaseFinish {
		return domain.ErrInvalidPhase
	}
	c.session.Round++
	return c.startRound()
}

// ReturnToLobby ends the game, keeping the roster and zeroing scores
func (c *Coordinator) ReturnToLobby() error {
	if err := c.transition(domain.PhaseLobby); err != nil {
		return err
	}
	c.timers.cancel(timerPhase)
	c.session.Round = 1
	c.session.CurrentPrompt = ""
	c.session.TimerSeconds = 0
	c.session.ResetRound()
	c.session.ResetScores()
	c.broadcastState()
	return nil
}

// ForceAdvance pushes the game past whatever it is waiting for
func (c *Coordinator) ForceAdvance() error {
	switch c.session.Phase {
	case domain.PhaseLobby:
		return c.StartGame()
	case domain.PhasePrompt:
		c.enterInput()
	case domain.PhaseInput:
		c.session.TimerSeconds = 0
		c.autofill()
		c.enterVoting()
	case domain.PhaseVoting:
		c.startReveal()
	case domain.PhaseReveal:
		c.endRound()
		return c.afterFinish()
	case domain.PhaseFinish:
		return c.afterFinish()
	}
	return nil
}

// afterFinish leaves FINISH: back to the lobby after the last round,
// on to the next round otherwise
func (c *Coordinator) afterFinish() error {
	if c.session.IsLastRound() {
		return c.ReturnToLobby()
	}
	return c.NextRound()
}

// checkProgress advances a phase whose wait condition was satisfied by a
// roster change
func (c *Coordinator) checkProgress() {
	switch c.session.Phase {
	case domain.PhaseInput:
		if c.session.AllSubmitted() {
			c.enterVoting()
		}
	case domain.PhaseVoting:
		if c.session.AllFinishedVoting() {
			c.startReveal()
		}
	}
}

// SetTheme switches the prompt pool. Lobby only.
func (c *Coordinator) SetTheme(id string) error {
	if c.session.Phase != domain.PhaseLobby {
		return domain.ErrInvalidPhase
	}
	if _, ok := c.opts.Themes[id]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTheme, id)
	}
	c.session.Theme = id
	c.session.UsedPrompts = []string{}
	c.broadcastState()
	return nil
}

// UpdateSettings replaces the lobby settings
func (c *Coordinator) UpdateSettings(s domain.Settings) error {
	if s.RoundDuration < 1 {
		return fmt.Errorf("%w: round duration must be positive", domain.ErrInvalidSettings)
	}
	if s.RequirePassword && s.Password == "" {
		return fmt.Errorf("%w: password required but empty", domain.ErrInvalidSettings)
	}
	c.session.Settings = s
	c.broadcastState()
	return nil
}

// handleSubmitAnswer records a player's answer for the round
func (c *Coordinator) handleSubmitAnswer(from string, m protocol.SubmitAnswer) error {
	p, err := c.member(from)
	if err != nil {
		return err
	}
	if c.session.Phase != domain.PhaseInput {
		return domain.ErrInvalidPhase
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return domain.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > domain.MaxAnswerLen {
		return domain.ErrAnswerTooLong
	}
	if !m.Source.Valid() {
		return domain.ErrInvalidSource
	}
	if err := c.session.AddSubmission(domain.NewSubmission(p.ID, text, m.Source, m.AgentID)); err != nil {
		return err
	}

	if c.session.AllSubmitted() {
		c.enterVoting()
		return nil
	}
	c.broadcastState()
	return nil
}

// handleSubmitVote records one guess
func (c *Coordinator) handleSubmitVote(from string, m protocol.SubmitVote) error {
	p, err := c.member(from)
	if err != nil {
		return err
	}
	if c.session.Phase != domain.PhaseVoting {
		return domain.ErrInvalidPhase
	}
	if !m.Guess.Valid() {
		return domain.ErrInvalidGuess
	}
	if c.session.HasFinishedVoting(p.ID) {
		return domain.ErrVotesLocked
	}
	if m.TargetAuthorID == p.ID {
		return domain.ErrSelfVote
	}
	sub, ok := c.session.SubmissionBy(m.TargetAuthorID)
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	sub.Votes[p.ID] = m.Guess
	c.broadcastState()
	return nil
}

// handleLockVotes marks a voter as done
func (c *Coordinator) handleLockVotes(from string) error {
	p, err := c.member(from)
	if err != nil {
		return err
	}
	if c.session.Phase != domain.PhaseVoting {
		return domain.ErrInvalidPhase
	}
	c.session.MarkFinishedVoting(p.ID)

	if c.session.AllFinishedVoting() {
		c.startReveal()
		return nil
	}
	c.broadcastState()
	return nil
}
