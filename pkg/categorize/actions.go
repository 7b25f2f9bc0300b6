package categorize

import "github.com/dtnitsch/actionsense/models"

var categoryActions = map[models.Category][]string{
	models.CategoryShopping: {
		"Compare product prices across open tabs.",
		"Search for coupon codes or cashback offers.",
		"Read recent reviews to confirm quality.",
		"Add the item to a wishlist for later review.",
	},
	models.CategoryLearning: {
		"Capture quick notes or highlights from this page.",
		"Schedule a follow-up session to continue learning.",
		"Share insights with teammates or study partners.",
		"Bookmark the resource in your learning tracker.",
	},
	models.CategoryFinance: {
		"Check due dates or upcoming payments related to this topic.",
		"Compare rates or fees with alternative providers.",
		"Review budget impact before making decisions.",
		"Document action items in your finance tracker.",
	},
	models.CategorySocial: {
		"Respond to outstanding messages that need attention.",
		"Unfollow or mute distractions that break focus.",
		"Share concise updates or takeaways with your network.",
	},
	models.CategoryProductivity: {
		"Convert key points into actionable tasks.",
		"Set a reminder or follow-up for critical deadlines.",
		"Organize related documents inside your workspace.",
	},
	models.CategoryResearch: {
		"Log citations or references for later.",
		"Summarize findings and note open questions.",
		"Identify supporting or conflicting sources to review next.",
	},
	models.CategoryEntertainment: {
		"Add upcoming releases or events to your calendar.",
		"Share highlights with friends who might enjoy this.",
		"Track how much time you want to spend on this topic.",
	},
	models.CategoryNews: {
		"Verify facts across multiple reputable sources.",
		"Record key impacts or decisions that apply to you.",
		"Mute repetitive topics to regain focus if needed.",
	},
	models.CategoryOther: {
		"Clarify whether this page supports your current goal.",
		"Decide if you should archive or close this tab.",
		"Set a reminder if you need to revisit later.",
	},
}

// ActionPoints returns the default suggestions for a category. The slice is a
// copy and safe to modify.
func ActionPoints(c models.Category) []string {
	actions := categoryActions[models.NormalizeCategory(string(c))]
	return append([]string(nil), actions...)
}
