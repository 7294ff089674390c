package translate

import "strings"

const fence = "```"

// NormalizeTargetLanguage maps common aliases of Chinese, English and
// Japanese to the token used in prompts. Other values come back trimmed.
func NormalizeTargetLanguage(target string) string {
	trimmed := strings.TrimSpace(target)
	switch strings.ToUpper(trimmed) {
	case "ZH", "ZH-CN", "ZH_CN", "ZH-HANS", "CHINESE":
		return "中文"
	case "EN", "EN-US", "EN_GB", "EN-GB", "ENGLISH":
		return "英文"
	case "JA", "JP", "JAPANESE":
		return "日文"
	default:
		return trimmed
	}
}

// ProviderLanguageCode maps a target to the ISO-style code expected by
// machine translation APIs.
func ProviderLanguageCode(target string) string {
	trimmed := strings.TrimSpace(target)
	switch strings.ToLower(trimmed) {
	case "zh", "zh-cn", "zh_cn", "zh-hans", "chinese", "中文":
		return "zh"
	case "en", "en-us", "en_gb", "en-gb", "english", "英文":
		return "en"
	case "ja", "jp", "japanese", "日文":
		return "ja"
	case "ko", "kr", "korean":
		return "ko"
	default:
		return trimmed
	}
}

// StripCodeFences removes a Markdown code fence wrapped around the whole
// text, including a language tag right after the opening fence. Text that
// is not fenced is only trimmed.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if len(s) < 2*len(fence) || !strings.HasPrefix(s, fence) || !strings.HasSuffix(s, fence) {
		return s
	}

	s = s[len(fence):]
	s = strings.TrimLeftFunc(s, isLangTagRune)
	s = strings.TrimLeft(s, "\r\n ")
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

func isLangTagRune(r rune) bool {
	return r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
