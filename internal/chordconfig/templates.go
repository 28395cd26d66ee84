package chordconfig

// defaultText is the configuration shown in a fresh editor
const defaultText = `{
  "numOfSequentialChords": 10
}`

// extendedText exercises every field of the extended schema
const extendedText = `{
  "numOfSequentialChords": 8,
  "minNumOfPitches": 3,
  "maxNumOfPitches": 5,
  "minPitch": 48,
  "maxPitch": 84,
  "minThickness": 0,
  "maxThickness": 12,
  "minRoot": 0,
  "maxRoot": 11,
  "minGeometryCenter": 55,
  "maxGeometryCenter": 72,
  "minPitchClassSetSize": 3,
  "maxPitchClassSetSize": 4,
  "minCOFSpan": 0,
  "maxCOFSpan": 6
}`

// Default returns the minimal configuration text used to prefill the editor.
func Default() string {
	return defaultText
}

// ExtendedTemplate returns an example using the full extended schema.
func ExtendedTemplate() string {
	return extendedText
}
