// Package frontmatter provides parsing of YAML frontmatter from the
// markdown files that define agents, commands, and skills in a plugin.
//
// Frontmatter is delimited by lines containing only "---" at the start and end.
// Hand-written and generated definitions frequently put multi-line prose with
// unescaped colons into the description field, which a strict YAML loader
// rejects. Before loading, the block is normalized: a [Classifier] decides line
// by line whether a line starts a new known field or continues the text of the
// previous description or name field, and continuation text is folded into a
// literal block scalar.
//
// # Basic Usage
//
//	res, err := frontmatter.Parse(content)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Metadata["description"])
//	fmt.Println(res.Body)
//
// Metadata can also be decoded into a struct:
//
//	var meta struct {
//		Name  string `yaml:"name"`
//		Model string `yaml:"model"`
//	}
//	if err := res.Decode(&meta); err != nil {
//		return err
//	}
//
// # Error Handling
//
// Parsing is all-or-nothing. The sentinel errors can be checked with
// [errors.Is]:
//
//   - [ErrMissingStartDelimiter]: the document doesn't start with "---"
//   - [ErrMissingEndDelimiter]: there is no closing "---"
//   - [ErrInvalidMetadataSyntax]: the normalized block is still invalid YAML
//   - [ErrMetadataNotAMapping]: the block is a scalar or sequence
//
// # Field Recognition
//
// Only the fields in [DefaultKnownFields] can end a multi-line description,
// and a model line only counts as a field when its value is one of
// [DefaultKnownModels]. Both sets can be replaced with [WithKnownFields] and
// [WithKnownModels]. The heuristic is intentionally lossy: a short value on an
// unknown field that directly follows a description is absorbed into it.
//
// All functions are pure and safe for concurrent use.
package frontmatter
