package bokeh

import "fmt"

// BindingName is the function the render host exposes into the page. The
// page-side ipc shim forwards every posted message to it.
const BindingName = "__bokehRenderPost"

// Envelope error codes posted by the in-page renderer. They mirror the
// host-side coded errors so page faults map onto the same taxonomy.
const (
	pageCodeBokehMissing  = "PAGE_ERROR"
	pageCodeEmbedFailure  = "RENDER_FAILURE"
	pageCodeExportFailure = "RENDER_FAILURE"
)

// renderScript is the inline renderer. renderBokeh is NOT invoked at page
// load; the host triggers it once navigation has settled. Every outcome,
// success or failure, is posted as a single JSON envelope so the host never
// waits on a message that will not arrive.
const renderScript = `
function postEnvelope(env) {
    window.ipc.postMessage(JSON.stringify(env));
}

if (!window.ipc) {
    window.ipc = { postMessage: function(msg) {
        if (typeof window.` + BindingName + ` === 'function') {
            window.` + BindingName + `(String(msg));
        }
    }};
}

function setDPI(canvas, dpi) {
    canvas.style.width = canvas.style.width || canvas.width + 'px';
    canvas.style.height = canvas.style.height || canvas.height + 'px';

    var scaleFactor = dpi / 96;
    var width = parseFloat(canvas.style.width);
    var height = parseFloat(canvas.style.height);

    // Back up current contents before resizing wipes them.
    var oldScale = canvas.width / width;
    var backupScale = scaleFactor / oldScale;
    var backup = canvas.cloneNode(false);
    backup.getContext('2d').drawImage(canvas, 0, 0);

    var ctx = canvas.getContext('2d');
    canvas.width = Math.ceil(width * scaleFactor);
    canvas.height = Math.ceil(height * scaleFactor);

    ctx.setTransform(backupScale, 0, 0, backupScale, 0, 0);
    ctx.drawImage(backup, 0, 0);
    ctx.setTransform(scaleFactor, 0, 0, scaleFactor, 0, 0);
}

function renderBokeh(json, dpi) {
    try {
        var data = JSON.parse(json);
        var rootId = data['root_id'];
        if (window.Bokeh === undefined) {
            throw new Error('Bokeh is not loaded');
        }
        window.Bokeh.embed.embed_item(data, document.getElementById('root')).then(function(viewManager) {
            try {
                var view = viewManager.get_by_id(rootId);
                var canvas = view.export().canvas;
                setDPI(canvas, dpi);
                var dataURL = canvas.toDataURL('image/png', 1.0);
                postEnvelope({ok: true, data_url: dataURL});
            } catch (err) {
                postEnvelope({ok: false, error_code: '` + pageCodeExportFailure + `', error_message: String(err && err.message || err)});
            }
        }).catch(function(err) {
            postEnvelope({ok: false, error_code: '` + pageCodeEmbedFailure + `', error_message: String(err && err.message || err)});
        });
    } catch (err) {
        postEnvelope({ok: false, error_code: '` + pageCodeBokehMissing + `', error_message: String(err && err.message || err)});
    }
}
`

// pageTemplate resets the box model so the exported canvas is not clipped by
// default body margins.
const pageTemplate = `<html>
<head>
<style>
    html, body {
        box-sizing: border-box;
        display: flow-root;
        height: 100%%;
        margin: 0;
        padding: 0;
    }
</style>
%s<script type='text/javascript'>%s</script>
</head>
<body>
<div id='root'></div>
</body>
</html>
`

// BuildPage assembles the complete render page for the given resource.
// Building is pure: the same resource always yields the same document.
func BuildPage(res Resource) string {
	return fmt.Sprintf(pageTemplate, res.ScriptTags(), renderScript)
}
