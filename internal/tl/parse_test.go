package tl

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/logger"
)

const sampleLayer = `boolFalse#bc799737 = Bool;
boolTrue#997275b5 = Bool;
true#3fedd339 = True;
vector#1cb5c415 {t:Type} # [ t ] = Vector t;
error#c4b9f9bb code:int text:string = Error;
null#56730bcc = Null;
invokeAfterMsg#cb9f372d {X:Type} msg_id:long query:!X = X;

///////// Main application API
---types---

inputPeerEmpty#7f3b18ea = InputPeer;
inputPeerSelf#7da07ec9 = InputPeer;
// a comment line
user#83314fca flags:# id:long access_hash:flags.0?long photo:flags.5?UserProfilePhoto = User;
userEmpty#d3bc4b7a id:long = User;
help.config#330b4067 dc_options:Vector<DcOption> = help.Config;
storage.fileJpeg#7efe0e = storage.FileType;

---functions---

invokeWithLayer#da9b0d0d {X:Type} layer:int query:!X = X;
auth.sendCode#a677244f phone_number:string api_id:int = auth.SentCode;
auth.signIn#8d52a951 flags:# phone_number:string phone_code:flags.0?string = auth.Authorization;
users.getUsers#d91a548 id:Vector<InputUser> = Vector<User>;
help.getConfig#c4f9186b = Config;
contacts.getContacts#5dd69e12 hash:long = contacts.Contacts;
`

func parseSample(t *testing.T) domain.ParsedSchema {
	t.Helper()
	return Parse(domain.RawLayer{
		LayerID:      170,
		ReleaseYear:  2023,
		ReleaseMonth: time.December,
		Text:         sampleLayer,
	})
}

func groupNames(groups []domain.TypeGroup) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}

func TestParse_LayerMetadata(t *testing.T) {
	schema := parseSample(t)

	assert.Equal(t, 170, schema.LayerID)
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), schema.ReleaseDate)
}

func TestParse_DropsEverythingBeforeAPIMarker(t *testing.T) {
	schema := parseSample(t)

	for _, g := range schema.Objects {
		assert.NotEqual(t, "X", g.Name)
	}
	for _, ns := range schema.Functions {
		for _, fn := range ns.Functions {
			assert.NotEqual(t, "invokeAfterMsg", fn.Name)
		}
	}
}

func TestParse_ObjectsGroupedByCategoryInOrder(t *testing.T) {
	schema := parseSample(t)

	assert.Equal(t, []string{"InputPeer", "User", "help.Config", "storage.FileType"}, groupNames(schema.Objects))

	peers, ok := schema.TypeGroup("InputPeer")
	require.True(t, ok)
	require.Len(t, peers.Constructors, 2)
	assert.Equal(t, "inputPeerEmpty", peers.Constructors[0].Name)
	assert.Equal(t, "7f3b18ea", peers.Constructors[0].ID)
	assert.Empty(t, peers.Constructors[0].Parameters)
	assert.Equal(t, "inputPeerSelf", peers.Constructors[1].Name)
}

func TestParse_ObjectNamespace(t *testing.T) {
	schema := parseSample(t)

	cfg, ok := schema.TypeGroup("help.Config")
	require.True(t, ok)
	require.Len(t, cfg.Constructors, 1)
	assert.Equal(t, "help", cfg.Constructors[0].Namespace)
	assert.Equal(t, "help.config", cfg.Constructors[0].Name)

	users, ok := schema.TypeGroup("User")
	require.True(t, ok)
	assert.Empty(t, users.Constructors[0].Namespace)
}

func TestParse_CommentsAreDropped(t *testing.T) {
	schema := parseSample(t)

	total := 0
	for _, g := range schema.Objects {
		total += len(g.Constructors)
	}
	assert.Equal(t, 6, total)
}

func TestParse_ConstructorParameters(t *testing.T) {
	schema := parseSample(t)

	users, ok := schema.TypeGroup("User")
	require.True(t, ok)
	user := users.Constructors[0]
	require.Len(t, user.Parameters, 4)

	assert.Equal(t, domain.Parameter{Name: "flags", Type: "#", IsFlagPlaceholder: true}, user.Parameters[0])
	assert.Equal(t, domain.Parameter{Name: "id", Type: "long"}, user.Parameters[1])
	assert.Equal(t, domain.Parameter{
		Name:       "access_hash",
		Type:       "long",
		FlagName:   "flags",
		FlagOffset: "0",
		IsOptional: true,
	}, user.Parameters[2])
	assert.Equal(t, "5", user.Parameters[3].FlagOffset)
}

func TestParse_FunctionBuckets(t *testing.T) {
	schema := parseSample(t)

	assert.Equal(t, []string{"auth", domain.OthersNamespace}, schema.FunctionNamespaceNames())

	auth, ok := schema.FunctionsIn("auth")
	require.True(t, ok)
	require.Len(t, auth, 2)
	assert.Equal(t, "auth.sendCode", auth[0].Name)
	assert.Equal(t, "auth.signIn", auth[1].Name)

	others, ok := schema.FunctionsIn(domain.OthersNamespace)
	require.True(t, ok)
	names := make([]string, 0, len(others))
	for _, fn := range others {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"invokeWithLayer", "users.getUsers", "help.getConfig", "contacts.getContacts"}, names)

	_, ok = schema.FunctionsIn("users")
	assert.False(t, ok)
}

func TestParse_FunctionReturnTypes(t *testing.T) {
	schema := parseSample(t)

	others, _ := schema.FunctionsIn(domain.OthersNamespace)
	getUsers := others[1]
	assert.Equal(t, "Vector<User>", getUsers.ReturnType)
	assert.Equal(t, "User", getUsers.InnerReturnType)
	assert.Equal(t, "d91a548", getUsers.ID)
	require.Len(t, getUsers.Parameters, 1)
	assert.Equal(t, "InputUser", getUsers.Parameters[0].InnerType)

	getConfig := others[2]
	assert.Equal(t, "Config", getConfig.ReturnType)
	assert.Empty(t, getConfig.InnerReturnType)

	invoke := others[0]
	require.Len(t, invoke.Parameters, 3)
	assert.Equal(t, domain.Parameter{Name: "query", Type: "!X", IsGeneric: true}, invoke.Parameters[2])
}

func TestParse_RoundTripGrouping(t *testing.T) {
	text := strings.Join([]string{
		"a#1 = A;",
		"b#2 = B;",
		"c#3 x:int = A;",
		"---functions---",
		"ns.one#10 = A;",
		"ns.two#11 = B;",
		"solo.only#12 = A;",
		"plain#13 = A;",
		"deep.ns.name#14 = A;",
	}, "\n")

	schema := Parse(domain.RawLayer{LayerID: 1, Text: text})

	require.Len(t, schema.Objects, 2)
	assert.Equal(t, "A", schema.Objects[0].Name)
	assert.Len(t, schema.Objects[0].Constructors, 2)
	assert.Equal(t, "B", schema.Objects[1].Name)

	seen := map[string]string{}
	for _, ns := range schema.Functions {
		for _, fn := range ns.Functions {
			_, dup := seen[fn.Name]
			assert.False(t, dup, "function %s appears twice", fn.Name)
			seen[fn.Name] = ns.Name
		}
	}
	assert.Equal(t, map[string]string{
		"ns.one":       "ns",
		"ns.two":       "ns",
		"solo.only":    domain.OthersNamespace,
		"plain":        domain.OthersNamespace,
		"deep.ns.name": domain.OthersNamespace,
	}, seen)
}

func TestParse_SelfKeyedBucketsSurviveWhenShared(t *testing.T) {
	text := "---functions---\nping#1 = Pong;\nping#2 = Pong;\n"

	schema := Parse(domain.RawLayer{LayerID: 1, Text: text})

	assert.Equal(t, []string{"ping"}, schema.FunctionNamespaceNames())
}

func TestParse_NaturalOthersBucketAbsorbsSingles(t *testing.T) {
	text := strings.Join([]string{
		"---functions---",
		"Others.a#1 = A;",
		"Others.b#2 = A;",
		"lonely.fn#3 = A;",
	}, "\n")

	schema := Parse(domain.RawLayer{LayerID: 1, Text: text})

	require.Len(t, schema.Functions, 1)
	others := schema.Functions[0]
	assert.Equal(t, domain.OthersNamespace, others.Name)
	require.Len(t, others.Functions, 3)
	assert.Equal(t, "lonely.fn", others.Functions[2].Name)
}

func TestParse_NoFunctionsMarker(t *testing.T) {
	schema := Parse(domain.RawLayer{LayerID: 1, Text: "a#1 = A;\n"})

	assert.Len(t, schema.Objects, 1)
	assert.Empty(t, schema.Functions)
}

func TestParse_EmptyText(t *testing.T) {
	schema := Parse(domain.RawLayer{LayerID: 3})

	assert.Empty(t, schema.Objects)
	assert.Empty(t, schema.Functions)
	assert.Empty(t, schema.FunctionNamespaceNames())
}

func TestParse_MarkerOnSameLine(t *testing.T) {
	schema := Parse(domain.RawLayer{LayerID: 1, Text: "a#1 = A;\n---functions--- f#2 = A;\nf#3 = B;"})

	require.Len(t, schema.Objects, 1)
	require.Len(t, schema.Functions, 1)
	assert.Equal(t, "f", schema.Functions[0].Name)
	assert.Len(t, schema.Functions[0].Functions, 2)
}

func TestParse_CRLFLineEndings(t *testing.T) {
	schema := Parse(domain.RawLayer{LayerID: 1, Text: "a#1 x:int = A;\r\n\r\nb#2 = A;\r\n"})

	require.Len(t, schema.Objects, 1)
	require.Len(t, schema.Objects[0].Constructors, 2)
	assert.Equal(t, "int", schema.Objects[0].Constructors[0].Parameters[0].Type)
}

func TestParse_IgnoreListMatchesWholeName(t *testing.T) {
	schema := Parse(domain.RawLayer{LayerID: 1, Text: "trueValue#1 = A;\ntrue#2 = True;\nnullable#3 = A;"})

	require.Len(t, schema.Objects, 1)
	assert.Len(t, schema.Objects[0].Constructors, 2)
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	defer func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	}()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)

	schema := Parse(domain.RawLayer{LayerID: 9, Text: "garbage line\nok#1 bad good:int = A;"})

	require.Len(t, schema.Objects, 1)
	ctor := schema.Objects[0].Constructors[0]
	assert.Equal(t, "ok", ctor.Name)
	require.Len(t, ctor.Parameters, 1)
	assert.Equal(t, "good", ctor.Parameters[0].Name)

	out := buf.String()
	assert.Contains(t, out, "layer 9: skipping line without '='")
	assert.Contains(t, out, `skipping parameter without ':' in 1: "bad"`)
}

func TestParse_DefinitionWithoutID(t *testing.T) {
	schema := Parse(domain.RawLayer{LayerID: 1, Text: "bare = A;"})

	require.Len(t, schema.Objects, 1)
	ctor := schema.Objects[0].Constructors[0]
	assert.Equal(t, "bare", ctor.Name)
	assert.Empty(t, ctor.ID)
	assert.Empty(t, ctor.Parameters)
}
