package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reifenservice-api/internal/domain/einvoice"
	"github.com/jhoicas/Reifenservice-api/internal/infrastructure/pdf/hybrid"
)

const verifierXML = `<?xml version="1.0" encoding="UTF-8"?><rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"/>`

func hybridSample(t *testing.T) []byte {
	t.Helper()
	plain, err := NewMarotoRenderer().Render(context.Background(), sampleDocument())
	require.NoError(t, err)
	out, err := hybrid.NewEmbedder().Embed(plain, []byte(verifierXML), hybrid.EmbedOptions{})
	require.NoError(t, err)
	return out
}

func TestVerify_AdjuntoCorrecto(t *testing.T) {
	err := NewPdfcpuVerifier().Verify(context.Background(), hybridSample(t), einvoice.AttachmentFileName, []byte(verifierXML))
	assert.NoError(t, err)
}

func TestVerify_ContenidoDistinto(t *testing.T) {
	err := NewPdfcpuVerifier().Verify(context.Background(), hybridSample(t), einvoice.AttachmentFileName, []byte("<otro/>"))
	assert.Error(t, err)
}

func TestVerify_SinAdjunto(t *testing.T) {
	plain, err := NewMarotoRenderer().Render(context.Background(), sampleDocument())
	require.NoError(t, err)

	err = NewPdfcpuVerifier().Verify(context.Background(), plain, einvoice.AttachmentFileName, []byte(verifierXML))
	assert.Error(t, err)
}
