package soapclient

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnvelope(t *testing.T) {
	got := BuildEnvelope("createUser", []Param{
		{Name: "name", Value: "A & B <c>"},
		{Name: "email", Value: "ab@x.com"},
	})
	assert.True(t, strings.HasPrefix(got, xml.Header))
	assert.Contains(t, got, `xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"`)
	assert.Contains(t, got, `xmlns:tns="http://example.com/user"`)
	assert.Contains(t, got, "<tns:createUser><name>A &amp; B &lt;c&gt;</name><email>ab@x.com</email></tns:createUser>")

	// well-formed XML end to end
	d := xml.NewDecoder(strings.NewReader(got))
	for {
		_, err := d.Token()
		if err != nil {
			assert.Equal(t, "EOF", err.Error())
			break
		}
	}
}

func TestBuildEnvelopeWithoutParams(t *testing.T) {
	got := BuildEnvelope("getAllUsers", nil)
	assert.Contains(t, got, "<soap:Body><tns:getAllUsers></tns:getAllUsers></soap:Body>")
}

func TestParseResponseDefaults(t *testing.T) {
	resp := ParseResponse("<html>gateway timeout</html>")
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, UnknownResponse, resp.Message)
	assert.False(t, resp.HasData())
	assert.ErrorIs(t, resp.Decode(&struct{}{}), ErrNoData)
}

func TestParseResponsePrefixes(t *testing.T) {
	for _, raw := range []string{
		`<tns:success>true</tns:success><tns:data>[]</tns:data><tns:message>ok</tns:message>`,
		`<success>true</success><data>[]</data><message>ok</message>`,
		`<ns2:success>true</ns2:success><a.b-c:data>[]</a.b-c:data><message>ok</message>`,
	} {
		resp := ParseResponse(raw)
		assert.True(t, resp.Success, raw)
		require.NotNil(t, resp.Data, raw)
		assert.Equal(t, "[]", *resp.Data)
		assert.Equal(t, "ok", resp.Message)
	}
}

func TestParseResponseSuccessIsExact(t *testing.T) {
	for _, v := range []string{"TRUE", "1", " true", ""} {
		resp := ParseResponse("<success>" + v + "</success>")
		assert.False(t, resp.Success, "%q", v)
	}
}

func TestParseResponseDecodesEntities(t *testing.T) {
	raw := `<tns:success>true</tns:success>` +
		`<tns:data>{&#34;id&#34;:1,&quot;name&quot;:&quot;Tom &amp; Jerry&quot;,&quot;email&quot;:&quot;t@x.com&quot;,&quot;phone&quot;:null}</tns:data>` +
		`<tns:message>User retrieved successfully</tns:message>`

	resp := ParseResponse(raw)
	require.True(t, resp.HasData())
	var u User
	require.NoError(t, resp.Decode(&u))
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "Tom & Jerry", u.Name)
	assert.Nil(t, u.Phone)
}

func TestParseResponseFirstMatchWins(t *testing.T) {
	resp := ParseResponse(`<message>first</message><message>second</message>`)
	assert.Equal(t, "first", resp.Message)
}

func TestParseResponseEmptyData(t *testing.T) {
	resp := ParseResponse(`<success>true</success><data></data>`)
	require.NotNil(t, resp.Data)
	assert.False(t, resp.HasData())
}
