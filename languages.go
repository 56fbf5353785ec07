package bingo

import (
	"sort"
	"strings"
)

// LanguageNames maps Bing translator language codes to English names.
// The list mirrors the Microsoft Translator "languages" endpoint; use
// provider.FetchSupportedLanguages to refresh it.
var LanguageNames = map[string]string{
	"af":       "Afrikaans",
	"am":       "Amharic",
	"ar":       "Arabic",
	"as":       "Assamese",
	"az":       "Azerbaijani",
	"ba":       "Bashkir",
	"bg":       "Bulgarian",
	"bho":      "Bhojpuri",
	"bn":       "Bangla",
	"bo":       "Tibetan",
	"brx":      "Bodo",
	"bs":       "Bosnian",
	"ca":       "Catalan",
	"cs":       "Czech",
	"cy":       "Welsh",
	"da":       "Danish",
	"de":       "German",
	"doi":      "Dogri",
	"dsb":      "Lower Sorbian",
	"dv":       "Divehi",
	"el":       "Greek",
	"en":       "English",
	"es":       "Spanish",
	"et":       "Estonian",
	"eu":       "Basque",
	"fa":       "Persian",
	"fi":       "Finnish",
	"fil":      "Filipino",
	"fj":       "Fijian",
	"fo":       "Faroese",
	"fr":       "French",
	"fr-CA":    "French (Canada)",
	"ga":       "Irish",
	"gl":       "Galician",
	"gom":      "Konkani",
	"gu":       "Gujarati",
	"ha":       "Hausa",
	"he":       "Hebrew",
	"hi":       "Hindi",
	"hne":      "Chhattisgarhi",
	"hr":       "Croatian",
	"hsb":      "Upper Sorbian",
	"ht":       "Haitian Creole",
	"hu":       "Hungarian",
	"hy":       "Armenian",
	"id":       "Indonesian",
	"ig":       "Igbo",
	"ikt":      "Inuinnaqtun",
	"is":       "Icelandic",
	"it":       "Italian",
	"iu":       "Inuktitut",
	"iu-Latn":  "Inuktitut (Latin)",
	"ja":       "Japanese",
	"ka":       "Georgian",
	"kk":       "Kazakh",
	"km":       "Khmer",
	"kmr":      "Kurdish (Northern)",
	"kn":       "Kannada",
	"ko":       "Korean",
	"ks":       "Kashmiri",
	"ku":       "Kurdish (Central)",
	"ky":       "Kyrgyz",
	"ln":       "Lingala",
	"lo":       "Lao",
	"lt":       "Lithuanian",
	"lug":      "Ganda",
	"lv":       "Latvian",
	"lzh":      "Chinese (Literary)",
	"mai":      "Maithili",
	"mg":       "Malagasy",
	"mi":       "Māori",
	"mk":       "Macedonian",
	"ml":       "Malayalam",
	"mn-Cyrl":  "Mongolian (Cyrillic)",
	"mn-Mong":  "Mongolian (Traditional)",
	"mni":      "Manipuri",
	"mr":       "Marathi",
	"ms":       "Malay",
	"mt":       "Maltese",
	"mww":      "Hmong Daw",
	"my":       "Myanmar (Burmese)",
	"nb":       "Norwegian",
	"ne":       "Nepali",
	"nl":       "Dutch",
	"nso":      "Sesotho sa Leboa",
	"nya":      "Nyanja",
	"or":       "Odia",
	"otq":      "Querétaro Otomi",
	"pa":       "Punjabi",
	"pl":       "Polish",
	"prs":      "Dari",
	"ps":       "Pashto",
	"pt":       "Portuguese (Brazil)",
	"pt-PT":    "Portuguese (Portugal)",
	"ro":       "Romanian",
	"ru":       "Russian",
	"run":      "Rundi",
	"rw":       "Kinyarwanda",
	"sd":       "Sindhi",
	"si":       "Sinhala",
	"sk":       "Slovak",
	"sl":       "Slovenian",
	"sm":       "Samoan",
	"sn":       "Shona",
	"so":       "Somali",
	"sq":       "Albanian",
	"sr-Cyrl":  "Serbian (Cyrillic)",
	"sr-Latn":  "Serbian (Latin)",
	"st":       "Sesotho",
	"sv":       "Swedish",
	"sw":       "Swahili",
	"ta":       "Tamil",
	"te":       "Telugu",
	"th":       "Thai",
	"ti":       "Tigrinya",
	"tk":       "Turkmen",
	"tlh-Latn": "Klingon (Latin)",
	"tlh-Piqd": "Klingon (pIqaD)",
	"tn":       "Setswana",
	"to":       "Tongan",
	"tr":       "Turkish",
	"tt":       "Tatar",
	"ty":       "Tahitian",
	"ug":       "Uyghur",
	"uk":       "Ukrainian",
	"ur":       "Urdu",
	"uz":       "Uzbek (Latin)",
	"vi":       "Vietnamese",
	"xh":       "Xhosa",
	"yo":       "Yoruba",
	"yua":      "Yucatec Maya",
	"yue":      "Cantonese (Traditional)",
	"zh-Hans":  "Chinese Simplified",
	"zh-Hant":  "Chinese Traditional",
	"zu":       "Zulu",
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar":  true, // Arabic
	"he":  true, // Hebrew
	"fa":  true, // Persian/Farsi
	"prs": true, // Dari
	"ur":  true, // Urdu
	"ps":  true, // Pashto
	"sd":  true, // Sindhi
	"ug":  true, // Uyghur
	"dv":  true, // Divehi
	"ks":  true, // Kashmiri
	"ku":  true, // Kurdish (Central)
}

// IsLanguageSupported reports whether lang is a known target language.
// AutoDetect is not a language and is not supported here.
func IsLanguageSupported(lang string) bool {
	_, ok := LanguageNames[lang]
	return ok
}

// GetLanguageName returns the English name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(lang string) string {
	if lang == AutoDetect {
		return "Auto-detect"
	}
	if name, ok := LanguageNames[lang]; ok {
		return name
	}
	return lang
}

// SupportedLanguages returns all known language codes, sorted.
func SupportedLanguages() []string {
	codes := make([]string, 0, len(LanguageNames))
	for code := range LanguageNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ValidatePair checks a source/target pair. from may be AutoDetect;
// otherwise it must be supported and differ from to.
func ValidatePair(from, to string) error {
	if !IsLanguageSupported(to) {
		return &ValidationError{Field: "to", Value: to, Message: "unsupported language"}
	}
	if from == AutoDetect {
		return nil
	}
	if !IsLanguageSupported(from) {
		return &ValidationError{Field: "from", Value: from, Message: "unsupported language"}
	}
	if from == to {
		return &ValidationError{Field: "from", Value: from, Message: "source and target languages are the same"}
	}
	return nil
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(lang string) string {
	base := strings.SplitN(lang, "-", 2)[0]
	if RTLLanguages[strings.ToLower(base)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(lang string) bool {
	return GetDirection(lang) == "rtl"
}
