package resolver

import (
	"context"
	"regexp"
	"strings"
)

type keywordEntry struct {
	department string
	keywords   []string
}

// keywordPatterns anchors each keyword at a word start, so "ear" fires on
// "earache" but not on "year" or "nearby".
var keywordPatterns = compileKeywords(keywordTable)

type keywordPattern struct {
	department string
	pattern    *regexp.Regexp
}

func compileKeywords(table []keywordEntry) []keywordPattern {
	out := make([]keywordPattern, len(table))
	for i, entry := range table {
		quoted := make([]string, len(entry.keywords))
		for j, kw := range entry.keywords {
			quoted[j] = regexp.QuoteMeta(kw)
		}
		out[i] = keywordPattern{
			department: entry.department,
			pattern:    regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`),
		}
	}
	return out
}

// keywordTable is checked top to bottom; the first department with a
// matching keyword wins.
var keywordTable = []keywordEntry{
	{"Cardiology", []string{"chest pain", "heart", "cardiac", "palpitation", "angina", "hypertension", "blood pressure", "arrhythmia", "shortness of breath"}},
	{"Neurology", []string{"headache", "migraine", "seizure", "stroke", "paralysis", "numbness", "dizziness", "vertigo", "tremor", "memory loss"}},
	{"Orthopedics", []string{"bone", "fracture", "joint pain", "arthritis", "back pain", "sprain", "knee pain", "shoulder pain", "hip pain", "muscle pain"}},
	{"Dermatology", []string{"skin", "rash", "acne", "eczema", "psoriasis", "itching", "allergy", "hives", "pimples", "skin infection"}},
	{"Gastroenterology", []string{"stomach", "abdominal pain", "diarrhea", "constipation", "vomiting", "nausea", "indigestion", "gastric", "liver", "intestine"}},
	{"ENT", []string{"ear", "nose", "throat", "hearing", "tonsil", "sinus", "voice", "ear pain", "sore throat"}},
	{"Ophthalmology", []string{"eye", "vision", "cataract", "glaucoma", "blurred vision", "eye pain", "red eye", "conjunctivitis"}},
	{"Pulmonology", []string{"lung", "breathing", "cough", "asthma", "bronchitis", "pneumonia", "chest congestion", "respiratory"}},
	{"Pediatrics", []string{"child", "infant", "baby", "vaccination", "growth", "childhood illness", "pediatric"}},
	{"Gynecology", []string{"pregnancy", "menstrual", "period", "ovarian", "uterus", "pcos", "gynec", "women's health"}},
	{"Urology", []string{"kidney", "bladder", "urinary", "prostate", "urine", "uti", "kidney stone"}},
	{"Psychiatry", []string{"depression", "anxiety", "mental", "stress", "insomnia", "mood", "psychological", "panic attack"}},
	{"Endocrinology", []string{"diabetes", "thyroid", "hormone", "sugar", "insulin", "metabolic", "gland"}},
	{"Oncology", []string{"cancer", "tumor", "chemotherapy", "radiation", "malignant", "oncology"}},
}

// KeywordResolver is the fixed keyword-to-department table.
type KeywordResolver struct{}

func NewKeywordResolver() KeywordResolver { return KeywordResolver{} }

func (KeywordResolver) Resolve(_ context.Context, text string) string {
	for _, kp := range keywordPatterns {
		if kp.pattern.MatchString(text) {
			return kp.department
		}
	}
	return ""
}
