package picoclip

// Keys of the settings document the device firmware reads from config.json.
const (
	KeyStartupDelay       = "startup_delay"
	KeyTypingDelay        = "typing_delay"
	KeyAddFinalEnter      = "add_final_enter"
	KeyEnableModifierKeys = "enable_modifier_keys"
	KeyJapaneseKeyboard   = "japanese_keyboard"
)

const (
	DefaultStartupDelay       = 3
	DefaultTypingDelay        = 0.01
	DefaultAddFinalEnter      = false
	DefaultEnableModifierKeys = false
	DefaultJapaneseKeyboard   = true
)

// Settings is a typed snapshot of the recognised keys. StartupDelay is whole
// seconds, TypingDelay is fractional seconds between keystrokes.
type Settings struct {
	StartupDelay       int     `json:"startup_delay"`
	TypingDelay        float64 `json:"typing_delay"`
	AddFinalEnter      bool    `json:"add_final_enter"`
	EnableModifierKeys bool    `json:"enable_modifier_keys"`
	JapaneseKeyboard   bool    `json:"japanese_keyboard"`
}

func DefaultSettings() Settings {
	return Settings{
		StartupDelay:       DefaultStartupDelay,
		TypingDelay:        DefaultTypingDelay,
		AddFinalEnter:      DefaultAddFinalEnter,
		EnableModifierKeys: DefaultEnableModifierKeys,
		JapaneseKeyboard:   DefaultJapaneseKeyboard,
	}
}
