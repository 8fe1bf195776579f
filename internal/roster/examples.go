package roster

// fewShotExamples are complete character sheets shown to the model so
// generated profiles match the expected schema. The first entry is the
// empty skeleton.
var fewShotExamples = []string{
	`{
  "name": "",
  "age": 0,
  "gender": "",
  "personalities": [],
  "appearance": {"description": "", "height": "", "weight": "", "hair": "", "eyes": ""},
  "background": {"hometown": "", "family": "", "motivation": ""},
  "skills": [],
  "secrets": []
}`,
	`{
  "name": "Mara Venn",
  "age": 25,
  "gender": "female",
  "personalities": ["friendly", "caring", "lazy", "toxic", "daring"],
  "appearance": {
    "description": "a quick-witted courier with a crooked grin and a tangle of curly hair, dressed in patched flight leathers",
    "height": "5'5\"",
    "weight": "120 lbs",
    "hair": "curly auburn",
    "eyes": "piercing blue"
  },
  "background": {
    "hometown": "a fringe settlement on the edge of a dense forest",
    "family": "raised by parents who taught her combat and survival",
    "motivation": "to avenge her family and see the world beyond her borders"
  },
  "skills": ["swordfighting", "manipulation"],
  "secrets": ["uses her charm to bend others to her bidding"]
}`,
	`{
  "name": "Lyrion",
  "age": 28,
  "gender": "male",
  "personalities": ["introspective", "compassionate", "curious", "diplomatic"],
  "appearance": {
    "description": "a slender offworld envoy with iridescent scales that shift color with his mood, mostly serene blues and greens",
    "height": "7'2\"",
    "weight": "light for his frame",
    "hair": "none",
    "eyes": "large, luminescent silver"
  },
  "background": {
    "hometown": "Eclipsion, a luminous equatorial city",
    "family": "a respected lineage of ambassadors and scholars",
    "motivation": "to build peaceful interstellar relations and study human cultures"
  },
  "skills": ["telepathic communication", "diplomatic negotiation", "cultural scholarship"],
  "secrets": ["carries an ancient artifact that amplifies his telepathy"]
}`,
}
