package stingray

var (
	TypeBik         = HashString("bik")
	TypeTexture     = HashString("texture")
	TypeUnit        = HashString("unit")
	TypeWwiseBank   = HashString("wwise_bank")
	TypeWwiseStream = HashString("wwise_stream")
)

// stock resource type names of the engine
var knownTypeNames = []string{
	"animation", "apb", "bik", "bones", "config", "crypto", "data", "entity",
	"flow", "font", "geometry_group", "ivf", "keys", "level", "lua", "material",
	"mod", "mouse_cursor", "navdata", "network_config", "oodle_net", "package",
	"particles", "physics", "physics_properties", "prefab", "render_config",
	"rt_pipeline", "scene", "shader", "shader_library", "shader_library_group",
	"shading_environment", "shading_environment_mapping", "slug", "slug_album",
	"sound_environment", "speedtree", "state_machine", "strings",
	"surface_properties", "texture", "timpani_bank", "timpani_master", "tome",
	"unit", "vector_field", "wwise_bank", "wwise_dep", "wwise_event",
	"wwise_metadata", "wwise_stream",
}

var knownTypes map[Hash]string

func init() {
	knownTypes = make(map[Hash]string, len(knownTypeNames))
	for _, name := range knownTypeNames {
		knownTypes[HashString(name)] = name
	}
}

// TypeName resolves a stock resource type hash to its name.
func TypeName(t Hash) (string, bool) {
	name, ok := knownTypes[t]
	return name, ok
}

func KnownTypeNames() []string {
	return append([]string(nil), knownTypeNames...)
}
