package formschema

var fallbackMessages = map[string]map[string]string{
	"en": {
		RuleRequired:      "{field} is required",
		RuleEmail:         "{field} must be a valid email address",
		RuleURL:           "{field} must be a valid URL",
		RuleMinLength:     "{field} must be at least {min} characters",
		RuleMaxLength:     "{field} must be at most {max} characters",
		RuleMinValue:      "{field} must be at least {min}",
		RuleMaxValue:      "{field} must be at most {max}",
		RulePattern:       "{field} has an invalid format",
		RuleDate:          "{field} must be a valid date",
		RuleMinSelected:   "Select at least {min} options for {field}",
		RuleMaxSelected:   "Select at most {max} options for {field}",
		RuleNumber:        "{field} must be a number",
		RuleOption:        "{field} has an unknown option",
		RuleInvalidFormat: "{field} is invalid",
	},
	"ar": {
		RuleRequired:      "{field} مطلوب",
		RuleEmail:         "{field} يجب أن يكون بريدًا إلكترونيًا صحيحًا",
		RuleURL:           "{field} يجب أن يكون رابطًا صحيحًا",
		RuleMinLength:     "{field} يجب ألا يقل عن {min} أحرف",
		RuleMaxLength:     "{field} يجب ألا يزيد عن {max} أحرف",
		RuleMinValue:      "{field} يجب ألا يقل عن {min}",
		RuleMaxValue:      "{field} يجب ألا يزيد عن {max}",
		RulePattern:       "صيغة {field} غير صحيحة",
		RuleDate:          "{field} يجب أن يكون تاريخًا صحيحًا",
		RuleMinSelected:   "اختر {min} خيارات على الأقل في {field}",
		RuleMaxSelected:   "اختر {max} خيارات على الأكثر في {field}",
		RuleNumber:        "{field} يجب أن يكون رقمًا",
		RuleOption:        "قيمة {field} غير معروفة",
		RuleInvalidFormat: "{field} غير صالح",
	},
}

func fallbackMessage(rule, lang string) string {
	table := fallbackMessages["ar"]
	if isEnglish(lang) {
		table = fallbackMessages["en"]
	}
	if m, ok := table[rule]; ok {
		return m
	}
	return table[RuleInvalidFormat]
}
