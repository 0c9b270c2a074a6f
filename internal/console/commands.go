package console

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

// Fixed replies.
const (
	msgClassMissing  = "** class name missing **"
	msgClassUnknown  = "** class doesn't exist **"
	msgIDMissing     = "** instance id missing **"
	msgNoInstance    = "** no instance found **"
	msgAttrMissing   = "** attribute name missing **"
	msgValueMissing  = "** value missing **"
	msgAttrImmutable = "** attribute can't be updated **"
	msgAttrUnknown   = "** attribute doesn't exist **"
	msgValueInvalid  = "** value invalid **"
)

// command is one console verb. run returns true to end the session.
type command struct {
	usage string
	run   func(c *Console, args []string) bool
}

var commands map[string]command

// Populated in init because help reads the table.
func init() {
	commands = map[string]command{
		"create":  {"create <Kind>: create and save a record, print its id", (*Console).create},
		"show":    {"show <Kind> <id>: print a record", (*Console).show},
		"destroy": {"destroy <Kind> <id>: delete a record and save", (*Console).destroy},
		"all":     {"all [<Kind>]: print every record, or every record of a kind", (*Console).all},
		"update":  {`update <Kind> <id> <attribute> "<value>": set an attribute and save`, (*Console).update},
		"count":   {"count <Kind>: print the number of records of a kind", (*Console).count},
		"find":    {`find <Kind> <attribute> "<value>": print records whose attribute equals value`, (*Console).find},
		"help":    {"help [<command>]: list commands or describe one", (*Console).help},
		"quit":    {"quit: leave the console", (*Console).quit},
		"exit":    {"exit: leave the console", (*Console).quit},
		"EOF":     {"EOF: leave the console (ctrl+d)", (*Console).eof},
	}
}

// kindArg resolves the kind named by args[0], printing the reply for a
// missing or unknown name.
func (c *Console) kindArg(args []string) (types.Kind, bool) {
	if len(args) == 0 {
		c.println(msgClassMissing)
		return "", false
	}
	kind, ok := types.LookupKind(args[0])
	if !ok {
		c.println(msgClassUnknown)
		return "", false
	}
	return kind, true
}

// recordArgs resolves "<Kind> <id>" to a held record.
func (c *Console) recordArgs(args []string) (*types.Record, bool) {
	kind, ok := c.kindArg(args)
	if !ok {
		return nil, false
	}
	if len(args) < 2 {
		c.println(msgIDMissing)
		return nil, false
	}
	rec, ok := c.reg.Get(kind, args[1])
	if !ok {
		c.println(msgNoInstance)
		return nil, false
	}
	return rec, true
}

// save persists the registry and reports a failure to the user.
func (c *Console) save() bool {
	if err := c.reg.Save(); err != nil {
		c.logger.Warn("save failed", "path", c.reg.Path(), "error", err)
		c.println(fmt.Sprintf("** save failed: %v **", err))
		return false
	}
	return true
}

func (c *Console) create(args []string) bool {
	kind, ok := c.kindArg(args)
	if !ok {
		return false
	}
	rec, err := types.NewRecord(kind)
	if err != nil {
		c.println(msgClassUnknown)
		return false
	}
	if err := c.reg.Add(rec); err != nil {
		c.logger.Warn("create failed", "kind", kind, "error", err)
		c.println(fmt.Sprintf("** %v **", err))
		return false
	}
	if c.save() {
		c.println(rec.ID())
	}
	return false
}

func (c *Console) show(args []string) bool {
	if rec, ok := c.recordArgs(args); ok {
		c.println(rec.String())
	}
	return false
}

func (c *Console) destroy(args []string) bool {
	rec, ok := c.recordArgs(args)
	if !ok {
		return false
	}
	c.reg.Remove(rec.Key())
	c.save()
	return false
}

func (c *Console) all(args []string) bool {
	var kind types.Kind
	if len(args) > 0 {
		k, ok := types.LookupKind(args[0])
		if !ok {
			c.println(msgClassUnknown)
			return false
		}
		kind = k
	}
	for _, rec := range c.reg.All().Records(kind) {
		c.println(rec.String())
	}
	return false
}

func (c *Console) update(args []string) bool {
	kind, ok := c.kindArg(args)
	if !ok {
		return false
	}
	switch {
	case len(args) < 2:
		c.println(msgIDMissing)
		return false
	case len(args) < 3:
		c.println(msgAttrMissing)
		return false
	case len(args) < 4:
		c.println(msgValueMissing)
		return false
	}
	rec, ok := c.reg.Get(kind, args[1])
	if !ok {
		c.println(msgNoInstance)
		return false
	}

	name := args[2]
	if err := types.CheckAttributeName(kind, name); err != nil {
		c.println(msgAttrUnknown)
		return false
	}
	value, err := types.ParseAttribute(kind, name, joinValue(args[3:]))
	if err == nil {
		err = rec.SetAttribute(name, value)
	}
	var immutable *types.ImmutableFieldError
	switch {
	case errors.As(err, &immutable):
		c.println(msgAttrImmutable)
		return false
	case err != nil:
		c.logger.Warn("update rejected", "key", rec.Key(), "attribute", name, "error", err)
		c.println(msgValueInvalid)
		return false
	}
	c.save()
	return false
}

func (c *Console) count(args []string) bool {
	kind, ok := c.kindArg(args)
	if !ok {
		return false
	}
	ix, ok := c.queryIndex()
	if !ok {
		return false
	}
	n, err := ix.Count(kind)
	if err != nil {
		c.queryFailed(err)
		return false
	}
	c.println(n)
	return false
}

func (c *Console) find(args []string) bool {
	kind, ok := c.kindArg(args)
	if !ok {
		return false
	}
	switch {
	case len(args) < 2:
		c.println(msgAttrMissing)
		return false
	case len(args) < 3:
		c.println(msgValueMissing)
		return false
	}
	ix, ok := c.queryIndex()
	if !ok {
		return false
	}
	keys, err := ix.Find(kind, args[1], joinValue(args[2:]))
	if errors.Is(err, types.ErrTypeMismatch) {
		c.println(msgValueInvalid)
		return false
	}
	if err != nil {
		c.queryFailed(err)
		return false
	}
	view := c.reg.All()
	for _, key := range keys {
		if rec, ok := view.Get(key); ok {
			c.println(rec.String())
		}
	}
	return false
}

func (c *Console) help(args []string) bool {
	if len(args) > 0 {
		cmd, ok := commands[args[0]]
		if !ok {
			c.println("*** No help on " + args[0])
			return false
		}
		c.println(cmd.usage)
		return false
	}
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	c.println("Documented commands (type help <command>):")
	c.println(strings.Join(names, "  "))
	return false
}

func (c *Console) quit([]string) bool { return true }

func (c *Console) eof([]string) bool {
	c.println()
	return true
}

// joinValue rebuilds a value split by the tokenizer and drops one pair of
// surrounding double quotes.
func joinValue(tokens []string) string {
	v := strings.Join(tokens, " ")
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}
	return v
}
