// Package audio names the game's sound cues and the Player that receives
// them. Audio is fire-and-forget: a missing device or an unknown cue is
// logged and never interrupts play. The speaker-backed player lives in
// beepsynth so headless builds do not link an audio device.
package audio

// Sound effect names.
const (
	SoundCrash     = "crash"     // Player hit a rival
	SoundExplosion = "explosion" // Player hit an obstacle
	SoundThunder   = "thunder"
	SoundLevelUp   = "levelup"
)

// Music track names.
const (
	TrackMenu = "menu"
	TrackGame = "game"
)

// Player is the audio collaborator used by the game.
type Player interface {
	PlayMusic(track string)
	PlaySound(effect string)
}

// Nop discards every cue.
type Nop struct{}

var _ Player = Nop{}

func (Nop) PlayMusic(string) {}
func (Nop) PlaySound(string) {}
