package katalon

import "strings"

// supportedKeys maps lower-cased recorder key names to the argument passed
// to Keys.chord in the generated script.
var supportedKeys = map[string]string{
	// Control keys
	"enter":      "Keys.ENTER",
	"return":     "Keys.RETURN",
	"tab":        "Keys.TAB",
	"escape":     "Keys.ESCAPE",
	"backspace":  "Keys.BACK_SPACE",
	"delete":     "Keys.DELETE",
	"insert":     "Keys.INSERT",
	"space":      "Keys.SPACE",
	" ":          "Keys.SPACE",
	"home":       "Keys.HOME",
	"end":        "Keys.END",
	"pageup":     "Keys.PAGE_UP",
	"pagedown":   "Keys.PAGE_DOWN",
	"arrowup":    "Keys.ARROW_UP",
	"arrowdown":  "Keys.ARROW_DOWN",
	"arrowleft":  "Keys.ARROW_LEFT",
	"arrowright": "Keys.ARROW_RIGHT",
	"shift":      "Keys.SHIFT",
	"control":    "Keys.CONTROL",
	"alt":        "Keys.ALT",
	"meta":       "Keys.META",
	"pause":      "Keys.PAUSE",
	"clear":      "Keys.CLEAR",
	"help":       "Keys.HELP",

	// Function keys
	"f1":  "Keys.F1",
	"f2":  "Keys.F2",
	"f3":  "Keys.F3",
	"f4":  "Keys.F4",
	"f5":  "Keys.F5",
	"f6":  "Keys.F6",
	"f7":  "Keys.F7",
	"f8":  "Keys.F8",
	"f9":  "Keys.F9",
	"f10": "Keys.F10",
	"f11": "Keys.F11",
	"f12": "Keys.F12",

	// Printable characters
	"a": "'a'", "b": "'b'", "c": "'c'", "d": "'d'", "e": "'e'", "f": "'f'",
	"g": "'g'", "h": "'h'", "i": "'i'", "j": "'j'", "k": "'k'", "l": "'l'",
	"m": "'m'", "n": "'n'", "o": "'o'", "p": "'p'", "q": "'q'", "r": "'r'",
	"s": "'s'", "t": "'t'", "u": "'u'", "v": "'v'", "w": "'w'", "x": "'x'",
	"y": "'y'", "z": "'z'",
	"0": "'0'", "1": "'1'", "2": "'2'", "3": "'3'", "4": "'4'",
	"5": "'5'", "6": "'6'", "7": "'7'", "8": "'8'", "9": "'9'",
}

// LookupKey returns the Keys.chord argument for a recorded key name.
// The lookup is case-insensitive; unknown keys return false.
func LookupKey(name string) (string, bool) {
	v, ok := supportedKeys[strings.ToLower(name)]
	return v, ok
}
