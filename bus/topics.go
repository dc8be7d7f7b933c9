package bus

// Well-known topics shared by the capture and playback services.
var (
	TopicRecordCommand = Topic{"record", "command"} // types.Command from the console
	TopicRecordState   = Topic{"record", "state"}   // retained recorder session state
	TopicPlayCommand   = Topic{"play", "command"}   // playback stop requests
	TopicPlayState     = Topic{"play", "state"}     // retained playback phase
	TopicConfigRobot   = Topic{"config", "robot"}   // retained robot configuration
)
