package catalog

// Category classifies an emergency scenario. The set is closed; templates
// never carry a category outside these six.
type Category int

const (
	CategoryNavigation Category = iota
	CategoryMedical
	CategoryWeather
	CategoryEquipment
	CategoryWildlife
	CategoryGeneral
)

var categoryNames = map[Category]string{
	CategoryNavigation: "Navigation",
	CategoryMedical:    "Medical",
	CategoryWeather:    "Weather",
	CategoryEquipment:  "Equipment",
	CategoryWildlife:   "Wildlife",
	CategoryGeneral:    "General",
}

// String returns the display name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Template describes a pre-written emergency scenario. Templates are
// immutable and statically enumerated; the ID is a stable slug used to
// select a template in trigger payloads.
type Template struct {
	ID              string
	Title           string
	Emoji           string
	Category        Category
	MessageFragment string
}

// Built-in templates for Australian camping/hiking. Order is presentation
// order; the first entry is the default selection.
var builtinTemplates = []Template{
	{
		ID:              "lost-on-trail",
		Title:           "Lost on Trail",
		Emoji:           "🗺️",
		Category:        CategoryNavigation,
		MessageFragment: "I AM LOST on hiking trail and need rescue assistance",
	},
	{
		ID:              "medical-emergency",
		Title:           "Medical Emergency",
		Emoji:           "🩹",
		Category:        CategoryMedical,
		MessageFragment: "MEDICAL EMERGENCY - I am injured and need immediate medical assistance",
	},
	{
		ID:              "severe-weather",
		Title:           "Severe Weather",
		Emoji:           "⛈️",
		Category:        CategoryWeather,
		MessageFragment: "Caught in DANGEROUS WEATHER CONDITIONS and need immediate rescue",
	},
	{
		ID:              "equipment-failure",
		Title:           "Equipment Failure",
		Emoji:           "⚙️",
		Category:        CategoryEquipment,
		MessageFragment: "CRITICAL EQUIPMENT FAILURE - stranded and need rescue assistance",
	},
	{
		ID:              "wildlife-encounter",
		Title:           "Wildlife Encounter",
		Emoji:           "🐨",
		Category:        CategoryWildlife,
		MessageFragment: "DANGEROUS WILDLIFE ENCOUNTER - need immediate assistance",
	},
	{
		ID:              "fall-injury",
		Title:           "Fall/Injury",
		Emoji:           "🩼",
		Category:        CategoryMedical,
		MessageFragment: "SERIOUS FALL with potential injuries - cannot move safely",
	},
	{
		ID:              "snake-bite",
		Title:           "Snake Bite",
		Emoji:           "🐍",
		Category:        CategoryMedical,
		MessageFragment: "SNAKE BITE EMERGENCY - need immediate medical evacuation",
	},
	{
		ID:              "flash-flood",
		Title:           "Flash Flood",
		Emoji:           "🌊",
		Category:        CategoryWeather,
		MessageFragment: "Trapped by FLASH FLOODING - need immediate rescue",
	},
	{
		ID:              "bushfire-threat",
		Title:           "Bushfire Threat",
		Emoji:           "🔥",
		Category:        CategoryWeather,
		MessageFragment: "BUSHFIRE APPROACHING - need immediate evacuation assistance",
	},
	{
		ID:              "general-emergency",
		Title:           "General Emergency",
		Emoji:           "🚨",
		Category:        CategoryGeneral,
		MessageFragment: "EMERGENCY SITUATION - need immediate assistance",
	},
}

// Templates returns the built-in templates in presentation order.
func Templates() []Template {
	out := make([]Template, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// ByID looks up a template by its slug ID.
func ByID(id string) (Template, bool) {
	for _, t := range builtinTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Default returns the first-listed template.
func Default() Template {
	return builtinTemplates[0]
}
