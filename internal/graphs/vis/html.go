package vis

// page takes, in order: title, extra CSS, width, height, network JSON, options JSON.
var page = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8">
    <title>%s</title>
    <style>
        * {
            margin: 0;
        }
%s
    </style>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <script type="text/javascript"
      src="https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"></script>
  </head>
  <body class="kgviz-container">
    <div id="network" style="width: %dpx; height: %dpx;"></div>
    <script type="text/javascript">
const graph = %s;
const options = %s;

const container = document.getElementById("network");
const data = {
  nodes: new vis.DataSet(graph.nodes),
  edges: new vis.DataSet(graph.edges),
};
const network = new vis.Network(container, data, options);

// A live session page defines window.kgvizSend to forward interactions.
function send(msg) {
  if (window.kgvizSend) {
    window.kgvizSend(msg);
  }
}
network.on("click", (p) => {
  if (p.nodes.length > 0) send({type: "click", node: p.nodes[0]});
});
network.on("hoverNode", (p) => send({type: "hover", node: p.node}));
network.on("blurNode", (p) => send({type: "unhover", node: p.node}));
network.on("dragging", (p) => {
  if (p.nodes.length > 0) send({type: "drag", node: p.nodes[0], x: p.pointer.canvas.x, y: p.pointer.canvas.y});
});
network.on("dragEnd", (p) => {
  if (p.nodes.length > 0) send({type: "dragend", node: p.nodes[0]});
});
network.on("zoom", (p) => send({type: "zoom", k: p.scale}));
    </script>
  </body>
</html>`
