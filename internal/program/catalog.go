package program

var moduleOrder = []Code{CodeA, CodeB, CodeC, CodeRest, CodeFinal}

var catalog = map[Code]Module{
	CodeA: {
		Code:  CodeA,
		Name:  "Module A: Road to the Pull-up",
		Focus: "Activation -> foundation -> negatives (Hampton progression)",
		Exercises: []Exercise{
			{
				Name:          "Scapular pull-ups",
				TargetReps:    "3 sets x 10-15 reps",
				ReferenceLink: "https://www.youtube.com/results?search_query=scapular+pull+ups",
				CoachingNote:  "Arms fully straight, lift the body with the back only (shrug down). Get this right and the pull-up follows.",
			},
			{
				Name:          "Pull-up foundation (pick one level)",
				TargetReps:    "3 sets x 10-15 reps",
				ReferenceLink: "https://youtu.be/CxZcao-jai8?t=138",
				CoachingNote:  "Wall pull-up -> Australian row (higher body is easier) -> jackknife. Pick one you can finish with clean form.",
			},
			{
				Name:          "Negative pull-ups",
				TargetReps:    "4 sets x 5-8 reps (5s+ descent)",
				ReferenceLink: "https://youtu.be/CxZcao-jai8?t=367",
				CoachingNote:  "Jump up, lower as slowly as possible. If you cannot control it, go back to the foundation step.",
			},
			{
				Name:          "Kettlebell/dumbbell single-arm row (heavy)",
				TargetReps:    "4 sets x 10 reps/side",
				ReferenceLink: "https://www.youtube.com/results?search_query=kettlebell+single+arm+row",
				CoachingNote:  "Builds absolute pulling strength, the weight has to be heavy enough",
			},
			{
				Name:          "Band face pulls",
				TargetReps:    "4 sets x 20 reps",
				ReferenceLink: "https://www.youtube.com/results?search_query=band+face+pulls",
				CoachingNote:  "Key for fixing rounded shoulders, rotate thumbs back",
			},
			{
				Name:          "Jump rope: fast burn",
				TargetReps:    "500 continuous jumps",
				ReferenceLink: "https://www.youtube.com/results?search_query=jump+rope+basic",
				CoachingNote:  "Calf endurance",
			},
		},
	},
	CodeB: {
		Code:  CodeB,
		Name:  "Module B: 3D Shoulders (Shoulders & Push)",
		Focus: "V-taper and rounded shoulder correction",
		Exercises: []Exercise{
			{
				Name:          "Dumbbell/kettlebell standing shoulder press",
				TargetReps:    "4 sets x 8-12 reps",
				ReferenceLink: "https://www.youtube.com/results?search_query=dumbbell+standing+shoulder+press",
				CoachingNote:  "Brace the core, do not arch the lower back",
			},
			{
				Name:          "Dumbbell lateral raise",
				TargetReps:    "4 sets x 15 reps",
				ReferenceLink: "https://www.youtube.com/results?search_query=dumbbell+lateral+raise+form",
				CoachingNote:  "Elbows slightly bent, pouring-water position, no shrugging",
			},
			{
				Name:          "Standard/weighted push-ups",
				TargetReps:    "4 sets x to failure",
				ReferenceLink: "https://www.youtube.com/results?search_query=perfect+push+up",
				CoachingNote:  "Chest pump",
			},
			{
				Name:          "Band pull-aparts",
				TargetReps:    "3 sets x 25 reps",
				ReferenceLink: "https://www.youtube.com/results?search_query=band+pull+aparts",
				CoachingNote:  "Rear delts, chest up",
			},
			{
				Name:          "Core: dead bug / plank",
				TargetReps:    "3 sets",
				ReferenceLink: "https://www.youtube.com/results?search_query=dead+bug+core",
				CoachingNote:  "Neutral pelvis",
			},
		},
	},
	CodeC: {
		Code:  CodeC,
		Name:  "Module C: Legs & VO2 Max",
		Focus: "Glute bridge activation + Bulgarian split squat + conditioning",
		Exercises: []Exercise{
			{
				Name:          "Kettlebell swings",
				TargetReps:    "5 sets x 20 reps",
				ReferenceLink: "https://www.youtube.com/results?search_query=russian+kettlebell+swing",
				CoachingNote:  "Drive with the hips, the fat-burning classic",
			},
			{
				Name:          "Bulgarian split squat",
				TargetReps:    "3 sets x 8-12 reps/leg",
				ReferenceLink: "https://www.youtube.com/results?search_query=bulgarian+split+squat+dumbbell",
				CoachingNote:  "Rear foot elevated, push through the front leg glute",
			},
			{
				Name:          "Weighted glute bridge",
				TargetReps:    "4 sets x 15-20 reps",
				ReferenceLink: "https://www.youtube.com/results?search_query=dumbbell+glute+bridge",
				CoachingNote:  "Dumbbell on the hips, hold the top for 1 second",
			},
			{
				Name:          "Dumbbell/kettlebell goblet squat",
				TargetReps:    "3 sets x 15 reps",
				ReferenceLink: "https://www.youtube.com/results?search_query=goblet+squat",
				CoachingNote:  "Accessory work, squat deep",
			},
			{
				Name:          "TABATA jump rope",
				TargetReps:    "4 minutes (20s on / 10s off)",
				ReferenceLink: "https://www.youtube.com/results?search_query=tabata+jump+rope",
				CoachingNote:  "All-out sprints",
			},
		},
	},
	CodeRest: {
		Code:  CodeRest,
		Name:  "Fixed Tuesday rest day",
		Focus: "Recovery & supplements",
		Rest:  true,
		Exercises: []Exercise{
			{
				Name:         "Full rest",
				TargetReps:   "Relax",
				CoachingNote: "Let the nervous system recover",
			},
			{
				Name:          "Foam rolling",
				TargetReps:    "20 min",
				ReferenceLink: "https://www.youtube.com/results?search_query=full+body+foam+rolling",
				CoachingNote:  "Focus on tight spots",
			},
			{
				Name:         "Magnesium & sleep",
				TargetReps:   "8 hrs",
				CoachingNote: "Magnesium before bed",
			},
		},
	},
	CodeFinal: {
		Code:  CodeFinal,
		Name:  "Final Day: Pull-up Test",
		Focus: "Time to check the work: try a strict pull-up",
		Exercises: []Exercise{
			{
				Name:          "Strict pull-up test",
				TargetReps:    "Max reps, full range of motion",
				ReferenceLink: "https://www.youtube.com/results?search_query=strict+pull+up+form",
				CoachingNote:  "Dead hang start, chin over the bar, no kipping.",
			},
		},
	},
}

// Supplement is an item on the daily supplement checklist.
type Supplement struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var supplements = []Supplement{
	{Code: "creatine", Name: "Creatine (5g)"},
	{Code: "k2_d3", Name: "K2 + D3"},
	{Code: "magnesium", Name: "Magnesium (before sleep)"},
}

func Supplements() []Supplement {
	return append([]Supplement(nil), supplements...)
}

func IsSupplement(code string) bool {
	for _, s := range supplements {
		if s.Code == code {
			return true
		}
	}
	return false
}
