package i18n

import "github.com/go-playground/locales"

// Keys
const (
	KeyToday     = "bucket.today"
	KeyThisWeek  = "bucket.thisWeek"
	KeyThisMonth = "bucket.thisMonth"
	KeyDelayed   = "bucket.delayed"

	KeyRequestsReport = "report.requests"
	KeyName           = "field.name"
	KeyRequestType    = "field.requestType"
	KeyAppliedDate    = "field.appliedDate"
	KeyDuration       = "field.duration"
	KeyReason         = "field.reason"
	KeyResult         = "field.result"
	KeyGeneratedAt    = "report.generatedAt"

	KeyDaysAgo       = "daysAgo"
	KeyRequestsCount = "requestsCount"
)

// BucketKey maps a bucket name to its title key.
var BucketKey = map[string]string{
	"today":     KeyToday,
	"thisWeek":  KeyThisWeek,
	"thisMonth": KeyThisMonth,
	"delayed":   KeyDelayed,
}

var translations = map[string]entries{
	"en": {
		texts: map[string]string{
			KeyToday:     "Today",
			KeyThisWeek:  "This Week",
			KeyThisMonth: "This Month",
			KeyDelayed:   "Delayed",

			KeyRequestsReport: "Teacher Requests",
			KeyName:           "Name",
			KeyRequestType:    "Request Type",
			KeyAppliedDate:    "Applied Date",
			KeyDuration:       "Duration",
			KeyReason:         "Reason",
			KeyResult:         "Result",
			KeyGeneratedAt:    "Generated on",

			"Absence":            "Absence",
			"Authorized Absence": "Authorized Absence",
			"Early Leave":        "Early Leave",
			"Late Arrival":       "Late Arrival",
			"Pending":            "Pending",
			"Approved":           "Approved",
			"Rejected":           "Rejected",
		},
		cardinals: map[string]map[locales.PluralRule]string{
			KeyDaysAgo: {
				locales.PluralRuleOne:   "{0} day ago",
				locales.PluralRuleOther: "{0} days ago",
			},
			KeyRequestsCount: {
				locales.PluralRuleOne:   "{0} request",
				locales.PluralRuleOther: "{0} requests",
			},
		},
	},
	"ar": {
		texts: map[string]string{
			KeyToday:     "اليوم",
			KeyThisWeek:  "هذا الأسبوع",
			KeyThisMonth: "هذا الشهر",
			KeyDelayed:   "متأخرة",

			KeyRequestsReport: "طلبات المعلمين",
			KeyName:           "الاسم",
			KeyRequestType:    "نوع الطلب",
			KeyAppliedDate:    "تاريخ التقديم",
			KeyDuration:       "المدة",
			KeyReason:         "السبب",
			KeyResult:         "النتيجة",
			KeyGeneratedAt:    "أُنشئ في",

			"Absence":            "غياب",
			"Authorized Absence": "غياب بإذن",
			"Early Leave":        "انصراف مبكر",
			"Late Arrival":       "تأخر",
			"Pending":            "قيد الانتظار",
			"Approved":           "مقبول",
			"Rejected":           "مرفوض",
		},
		cardinals: map[string]map[locales.PluralRule]string{
			KeyDaysAgo: {
				locales.PluralRuleZero:  "اليوم ({0})",
				locales.PluralRuleOne:   "منذ يوم ({0})",
				locales.PluralRuleTwo:   "منذ يومين ({0})",
				locales.PluralRuleFew:   "منذ {0} أيام",
				locales.PluralRuleMany:  "منذ {0} يومًا",
				locales.PluralRuleOther: "منذ {0} يوم",
			},
			KeyRequestsCount: {
				locales.PluralRuleZero:  "لا طلبات ({0})",
				locales.PluralRuleOne:   "طلب واحد ({0})",
				locales.PluralRuleTwo:   "طلبان ({0})",
				locales.PluralRuleFew:   "{0} طلبات",
				locales.PluralRuleMany:  "{0} طلبًا",
				locales.PluralRuleOther: "{0} طلب",
			},
		},
	},
}
