package grpc

import (
	pb "github.com/godilite/camps-trends/api/v1"
	"github.com/godilite/camps-trends/internal/analytics"
)

var categoryMetadata = map[analytics.CampsCategory]pb.CategoryMetadata{
	analytics.Certainty: {
		Name:        "Certainty",
		Description: "Confidence about the future and how things work",
		Color:       "bg-blue-500",
	},
	analytics.Autonomy: {
		Name:        "Autonomy",
		Description: "Control over decisions that affect your work",
		Color:       "bg-green-500",
	},
	analytics.Meaning: {
		Name:        "Meaning",
		Description: "Sense of purpose and fulfillment in work",
		Color:       "bg-purple-500",
	},
	analytics.Progress: {
		Name:        "Progress",
		Description: "Moving forward and achieving goals",
		Color:       "bg-orange-500",
	},
	analytics.SocialInclusion: {
		Name:        "Social Inclusion",
		Description: "Feeling part of a supportive team/community",
		Color:       "bg-pink-500",
	},
}

// CategoryMetadataFor returns display metadata for c, or nil for unknown categories.
func CategoryMetadataFor(c analytics.CampsCategory) *pb.CategoryMetadata {
	md, ok := categoryMetadata[c]
	if !ok {
		return nil
	}
	md.Category = string(c)
	return &md
}
