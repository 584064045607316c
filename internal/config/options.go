package config

// DefaultSchema returns every option vssdecide reads.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll(globalOptions)
	s.RegisterAll(bodyOptions)
	s.RegisterAll(arenaOptions)
	s.RegisterAll(roleOptions)
	return s
}

var globalOptions = []ConfigOption{
	{Key: "log.level", Type: TypeString, Default: "info", Description: "Log level: debug, info, warn, error", EnvVar: "VSS_LOG_LEVEL"},
	{Key: "log.file", Type: TypeString, Description: "Log file path (JSON output); stderr text when empty", EnvVar: "VSS_LOG_FILE"},
	{Key: "tick.rate", Type: TypeInt, Default: "60", Description: "Decision ticks per second", EnvVar: "VSS_TICK_RATE"},
	{Key: "record.path", Type: TypeString, Description: "SQLite file recording every tick; disabled when empty", EnvVar: "VSS_RECORD_PATH"},
	{Key: "serial.port", Type: TypeString, Description: "Serial device of the radio; actions are only logged when empty", EnvVar: "VSS_SERIAL_PORT"},
	{Key: "serial.baud", Type: TypeInt, Default: "115200", Description: "Serial baud rate", EnvVar: "VSS_SERIAL_BAUD"},
	{Key: "role", Type: TypeString, Default: "keeper", Description: "Role to play: attacker, defender, keeper, keeper-tree", EnvVar: "VSS_ROLE"},
	{Key: "robot.body", Type: TypeString, Description: "Body whose [body.<name>] gains tune the motion loop"},
	{Key: "robot.index", Type: TypeInt, Default: "0", Description: "Robot index addressed on the radio link", EnvVar: "VSS_ROBOT_INDEX"},
}

var bodyOptions = []ConfigOption{
	{Key: "kp", Section: bodySection, Type: TypeFloat, Default: "1", Description: "Proportional gain of the heading loop"},
	{Key: "ki", Section: bodySection, Type: TypeFloat, Default: "0", Description: "Integral gain of the heading loop"},
	{Key: "kd", Section: bodySection, Type: TypeFloat, Default: "0", Description: "Derivative gain of the heading loop"},
}

// arenaOptions are in centimetres.
var arenaOptions = []ConfigOption{
	{Key: "length", Section: "arena", Type: TypeFloat, Default: "150", Description: "Field length along x"},
	{Key: "width", Section: "arena", Type: TypeFloat, Default: "130", Description: "Field width along y"},
	{Key: "goal-y-min", Section: "arena", Type: TypeFloat, Default: "45", Description: "Lower edge of the goal mouth"},
	{Key: "goal-y-max", Section: "arena", Type: TypeFloat, Default: "85", Description: "Upper edge of the goal mouth"},
	{Key: "area-depth", Section: "arena", Type: TypeFloat, Default: "15", Description: "Goal area depth"},
	{Key: "area-y-min", Section: "arena", Type: TypeFloat, Default: "30", Description: "Lower edge of the goal area"},
	{Key: "area-y-max", Section: "arena", Type: TypeFloat, Default: "100", Description: "Upper edge of the goal area"},
	{Key: "bulge-rx", Section: "arena", Type: TypeFloat, Default: "10", Description: "Goal area bulge radius along x"},
	{Key: "bulge-ry", Section: "arena", Type: TypeFloat, Default: "5", Description: "Goal area bulge radius along y"},
	{Key: "corner", Section: "arena", Type: TypeFloat, Default: "10", Description: "Side of the corner zones"},
	{Key: "bottom-line", Section: "arena", Type: TypeFloat, Default: "10", Description: "Depth of the goal line strips"},
	{Key: "border", Section: "arena", Type: TypeFloat, Default: "10", Description: "Depth of the side wall strips"},
	{Key: "keeper-line", Section: "arena", Type: TypeFloat, Default: "10", Description: "Distance of the keeper line from its goal line"},
}

var roleOptions = []ConfigOption{
	{Key: "speed", Section: "keeper", Type: TypeFloat, Default: "100", Description: "Cruise wheel speed"},
	{Key: "spin-speed", Section: "keeper", Type: TypeFloat, Default: "255", Description: "Spin wheel speed"},
	{Key: "buffer-size", Section: "keeper", Type: TypeInt, Default: "50", Description: "Ball positions kept for trajectory fitting"},
	{Key: "defence-threshold", Section: "keeper", Type: TypeFloat, Default: "35", Description: "Ball distance from the own goal line beyond which a stray keeper heads home"},

	{Key: "speed", Section: "attacker", Type: TypeFloat, Default: "150", Description: "Cruise wheel speed"},
	{Key: "spin-speed", Section: "attacker", Type: TypeFloat, Default: "255", Description: "Spin wheel speed"},
	{Key: "attack-margin", Section: "attacker", Type: TypeFloat, Default: "0", Description: "Extends the attacking half toward the own goal"},
	{Key: "stuck-threshold", Section: "attacker", Type: TypeInt, Default: "60", Description: "Blocked ticks before stuck recovery"},

	{Key: "speed", Section: "defender", Type: TypeFloat, Default: "169", Description: "Cruise wheel speed"},
	{Key: "line-x", Section: "defender", Type: TypeFloat, Default: "37.5", Description: "Distance of the holding line from the own goal line"},
	{Key: "stuck-threshold", Section: "defender", Type: TypeInt, Default: "60", Description: "Blocked ticks before stuck recovery"},

	{Key: "speed", Section: "tree", Type: TypeFloat, Default: "100", Description: "Cruise wheel speed"},
	{Key: "push-timeout", Section: "tree", Type: TypeDuration, Default: "1s", Description: "How long the keeper pushes before spinning"},
	{Key: "look-ahead", Section: "tree", Type: TypeDuration, Default: "1s", Description: "Cap on ball extrapolation"},
	{Key: "keeper.override", Section: "tree", Type: TypeString, Description: "Expression that, while true, parks the keeper on its goal centre"},
}
