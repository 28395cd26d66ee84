package urls

// Documentation links shown in troubleshooting output. All of them point
// into the project README on GitHub.

// Repository is the project home.
const Repository = "https://github.com/chordnova/chordnova"

// ConfigurationFormat documents the configuration JSON, including every
// extended range field.
const ConfigurationFormat = Repository + "#configuration-format"

// GeneratorBinary describes the load/compute contract an external
// generator executable must implement for the exec engine.
const GeneratorBinary = Repository + "#generator-binary"

// EngineServer explains how to run chordnova-engine and reach it from
// another machine.
const EngineServer = Repository + "#engine-server"

// TroubleshootingGuide lists fixes for common engine problems.
const TroubleshootingGuide = Repository + "#troubleshooting"
