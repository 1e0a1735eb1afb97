package adapter

import "time"

// siteDefs is the static roster of heuristically-crawled sources, in
// registration order. Placeholder .example domains stay gated off until a
// real endpoint arrives through a site override.
var siteDefs = []siteDef{
	{
		key:          "learnethiopia",
		name:         "LearnEthiopia.com",
		baseURL:      "https://learnethiopia.com",
		pattern:      `/course/|/courses/|/program/`,
		catalogPaths: []string{"/courses"},
	},
	{
		key:     "eduhubplc",
		name:    "EDUHUB Technology Solutions",
		baseURL: "https://eduhubplc.com",
		pattern: `course|training|solution|product`,
	},
	{
		key:     "alx",
		name:    "ALX Africa",
		baseURL: "https://www.alxafrica.com",
		pattern: `program|course|software|data|cloud|ai`,
	},
	{
		key:     "smartethio",
		name:    "SmartEthio",
		baseURL: "https://smartethio.com",
		pattern: `grade|subject|course|lesson|exam`,
		subject: "K12",
	},
	{
		key:     "afriwork",
		name:    "Afriwork",
		baseURL: "https://afriwork.com",
		pattern: `learn|academy|blog|training|skills`,
	},
	{
		key:      "kubaya",
		name:     "Kubaya Learning",
		baseURL:  "https://kubayalearning.com",
		pattern:  `course|lesson|learn|levels|amharic`,
		language: "Amharic",
	},
	{
		key:     "staffordglobal",
		name:    "Stafford Global",
		baseURL: "https://www.staffordglobal.org",
		pattern: `program|course|mba|msc|pgce|degree`,
	},
	{
		key:          "elearneth",
		name:         "eLearn Ethiopia",
		baseURL:      "https://elearnethiopia.example",
		pattern:      `course|program|catalog|category`,
		catalogPaths: []string{"/course/index.php"},
		listSelector: ".coursebox a[href], .course-title a[href], a.coursename",
	},
	{
		key:     "aau",
		name:    "AAU e-Learning",
		baseURL: "https://elearning.aau.edu.et",
		pattern: `course|program|catalog|category`,
	},
	{
		key:     "aau_elearnafrica",
		name:    "AAU-eLearnAfrica LMS",
		baseURL: "https://elearnafrica.example",
		pattern: `course|program|catalog|category`,
	},
	{
		key:     "stmarys",
		name:    "St. Mary's University Distance Education",
		baseURL: "https://smuc.edu.et",
		pattern: `distance|program|course|degree`,
	},
	{
		key:     "ili",
		name:    "International Leadership Institute",
		baseURL: "https://ili.edu.et",
		pattern: `program|course|diploma|degree|certificate`,
	},
	{
		key:     "infonet",
		name:    "Infonet College",
		baseURL: "https://infonetcollege.example",
		pattern: `short-course|training|program|course`,
	},
	{
		key:     "microlink",
		name:    "Microlink IT College",
		baseURL: "https://microlinkcolleges.net",
		pattern: `cisco|ict|program|course|training`,
	},
	{
		key:     "ennlite",
		name:    "Ennlite Academy",
		baseURL: "https://ennlite.example",
		pattern: `course|training|graphic|marketing|web|app`,
	},
	{
		key:     "gxcamp",
		name:    "GxCamp",
		baseURL: "https://gxcamp.example",
		pattern: `course|ict|english|web|amharic`,
	},
	{
		key:          "eopcw",
		name:         "Ethiopian Open Courseware",
		baseURL:      "https://eopcw.com",
		pattern:      `course`,
		listSelector: "div#popular-courses a",
	},
	{
		key:     "learnup",
		name:    "LearnUp Ethiopia",
		baseURL: "https://learnup.example",
	},
	{
		key:     "5mec",
		name:    "5 Million Ethiopian Coders",
		baseURL: "https://5millioncoders.example",
	},
	{
		key:     "hagerly",
		name:    "Hagerly",
		baseURL: "https://hagerly.example",
	},
	{
		key:     "haleta",
		name:    "Haleta App",
		baseURL: "https://haleta.example",
	},
	{
		key:     "zementechnologies",
		name:    "Zemen Technologies",
		baseURL: "https://zemen-technology.example",
	},
}

// Defaults builds the full adapter roster in registration order, applying
// per-site overrides. The rendered-DOM sources come first alongside the
// government portal, matching the roster the harvester has always shipped.
func Defaults(deps Deps, settle time.Duration, overrides map[string]Override) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(siteDefs)+2)

	gov, err := newLearningGov(overrides["learninggov"], settle, deps)
	if err != nil {
		return nil, err
	}
	adapters = append(adapters, gov)

	ethernet, err := newEthernetPortal(overrides["ethernet"], settle, deps)
	if err != nil {
		return nil, err
	}
	adapters = append(adapters, ethernet)

	for _, def := range siteDefs {
		site, err := newSite(def, overrides[def.key], deps)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, site)
	}
	return adapters, nil
}
