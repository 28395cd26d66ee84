// Package chordconfig parses and validates the JSON configuration handed to
// the chord progression engine.
//
// The configuration is a JSON object. The minimal schema carries a single
// required number:
//
//	{"numOfSequentialChords": 10}
//
// The extended schema adds fourteen optional numeric range fields (pitch
// bounds, thickness bounds, root bounds, geometry-center bounds, pitch-class
// set size bounds and circle-of-fifths span bounds). Their musical meaning is
// opaque to this package: a present field must be a JSON number, and range
// checks are left to the engine, whose loadConfig verdict is authoritative.
//
// Fields outside the schema are accepted and ignored here. The original text
// is kept in Config.Raw so that the engine receives the object verbatim.
//
// # Usage
//
//	cfg, err := chordconfig.Parse(text)
//	if err != nil {
//	    // *ParseError: do not call the engine
//	    return err
//	}
//	fmt.Println(cfg.NumOfSequentialChords)
package chordconfig
