// Package category derives the bounded component taxonomy.
//
// A component's default category comes from its name segment: the text before
// the first hyphen with trailing digits and hyphens removed ("hero1" and
// "hero-2" both become "hero"). A curated collapse map then merges many
// segments into a small set of human-readable categories so the registry
// browser stays navigable:
//
//	{
//	  "hero": "Hero",
//	  "feature": "Features",
//	  "features": "Features",
//	  "cta": "Call to Action"
//	}
//
// Distribution reports how components spread over categories and checks the
// taxonomy policy: the number of distinct categories must stay in a range and
// no single category may hold more than a fixed share of all components.
package category
